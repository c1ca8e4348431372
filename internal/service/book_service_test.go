package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/Zhandos04/library-management-system/internal/models"
	"github.com/Zhandos04/library-management-system/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

// --- MOCKS ---

type MockBookRepository struct {
	mock.Mock
}

func (m *MockBookRepository) GetAll(ctx context.Context, page, pageSize int) ([]models.Book, int64, error) {
	args := m.Called(ctx, page, pageSize)
	return args.Get(0).([]models.Book), args.Get(1).(int64), args.Error(2)
}

func (m *MockBookRepository) GetByID(ctx context.Context, id int64) (*models.Book, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Book), args.Error(1)
}

func (m *MockBookRepository) Create(ctx context.Context, b *models.Book) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockBookRepository) Update(ctx context.Context, id int64, b *models.Book) error {
	args := m.Called(ctx, id, b)
	return args.Error(0)
}

func (m *MockBookRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockBookRepository) Search(ctx context.Context, query string) ([]models.Book, error) {
	args := m.Called(ctx, query)
	return args.Get(0).([]models.Book), args.Error(1)
}

func (m *MockBookRepository) SetCoverURL(ctx context.Context, id int64, url *string) error {
	args := m.Called(ctx, id, url)
	return args.Error(0)
}

func (m *MockBookRepository) SetDescription(ctx context.Context, id int64, description string) error {
	args := m.Called(ctx, id, description)
	return args.Error(0)
}

type MockImageStore struct {
	mock.Mock
}

func (m *MockImageStore) UploadImage(filename string, content io.Reader) (string, error) {
	args := m.Called(filename, content)
	return args.String(0), args.Error(1)
}

func (m *MockImageStore) DeleteImage(url string) bool {
	args := m.Called(url)
	return args.Bool(0)
}

type MockDescriptionGenerator struct {
	mock.Mock
}

func (m *MockDescriptionGenerator) GenerateBookDescription(ctx context.Context, title, author, category string) (string, error) {
	args := m.Called(ctx, title, author, category)
	return args.String(0), args.Error(1)
}

// --- SETUP ---

func newTestBookService(repo *MockBookRepository, images *MockImageStore, gen DescriptionGenerator) BookService {
	return NewBookService(repo, images, gen, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// --- TESTS ---

func TestBookService_Create(t *testing.T) {
	repo := new(MockBookRepository)
	svc := newTestBookService(repo, new(MockImageStore), nil)

	repo.On("Create", mock.Anything, mock.AnythingOfType("*models.Book")).Return(nil).Once()

	book := &models.Book{Title: "Dune", Author: "Frank Herbert", TotalCopies: 3}
	err := svc.Create(context.Background(), book)

	assert.NoError(t, err)
	assert.Equal(t, 3, book.AvailableCopies)
}

func TestBookService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("TotalChangePreservesCopiesOnLoan", func(t *testing.T) {
		repo := new(MockBookRepository)
		svc := newTestBookService(repo, new(MockImageStore), nil)

		existing := &models.Book{ID: 1, TotalCopies: 5, AvailableCopies: 4}
		repo.On("GetByID", mock.Anything, int64(1)).Return(existing, nil).Once()
		repo.On("Update", mock.Anything, int64(1), mock.AnythingOfType("*models.Book")).Return(nil).Once()

		update := &models.Book{Title: "Dune", TotalCopies: 8}
		err := svc.Update(ctx, 1, update)

		assert.NoError(t, err)
		// 1 copy on loan before, still 1 on loan after the grow.
		assert.Equal(t, 7, update.AvailableCopies)
	})

	t.Run("ShrinkClampsAtZero", func(t *testing.T) {
		repo := new(MockBookRepository)
		svc := newTestBookService(repo, new(MockImageStore), nil)

		existing := &models.Book{ID: 1, TotalCopies: 5, AvailableCopies: 1}
		repo.On("GetByID", mock.Anything, int64(1)).Return(existing, nil).Once()
		repo.On("Update", mock.Anything, int64(1), mock.AnythingOfType("*models.Book")).Return(nil).Once()

		update := &models.Book{Title: "Dune", TotalCopies: 2}
		err := svc.Update(ctx, 1, update)

		assert.NoError(t, err)
		assert.Equal(t, 0, update.AvailableCopies)
	})

	t.Run("UnchangedTotalKeepsAvailable", func(t *testing.T) {
		repo := new(MockBookRepository)
		svc := newTestBookService(repo, new(MockImageStore), nil)

		existing := &models.Book{ID: 1, TotalCopies: 5, AvailableCopies: 2}
		repo.On("GetByID", mock.Anything, int64(1)).Return(existing, nil).Once()
		repo.On("Update", mock.Anything, int64(1), mock.AnythingOfType("*models.Book")).Return(nil).Once()

		update := &models.Book{Title: "Dune", TotalCopies: 5, AvailableCopies: 99}
		err := svc.Update(ctx, 1, update)

		assert.NoError(t, err)
		// Client-supplied available count is never trusted.
		assert.Equal(t, 2, update.AvailableCopies)
	})

	t.Run("NotFound", func(t *testing.T) {
		repo := new(MockBookRepository)
		svc := newTestBookService(repo, new(MockImageStore), nil)

		repo.On("GetByID", mock.Anything, int64(404)).Return(nil, gorm.ErrRecordNotFound).Once()

		err := svc.Update(ctx, 404, &models.Book{Title: "X"})

		assert.ErrorIs(t, err, repository.ErrBookNotFound)
	})
}

func TestBookService_UploadCover(t *testing.T) {
	ctx := context.Background()

	t.Run("ReplacesOldCover", func(t *testing.T) {
		repo := new(MockBookRepository)
		images := new(MockImageStore)
		svc := newTestBookService(repo, images, nil)

		oldURL := "/covers/old.jpg"
		existing := &models.Book{ID: 1, CoverURL: &oldURL}
		repo.On("GetByID", mock.Anything, int64(1)).Return(existing, nil).Once()
		images.On("UploadImage", "cover.jpg", mock.Anything).Return("/covers/new.jpg", nil).Once()
		newURL := "/covers/new.jpg"
		repo.On("SetCoverURL", mock.Anything, int64(1), &newURL).Return(nil).Once()
		images.On("DeleteImage", "/covers/old.jpg").Return(true).Once()

		url, err := svc.UploadCover(ctx, 1, "cover.jpg", strings.NewReader("img"))

		assert.NoError(t, err)
		assert.Equal(t, "/covers/new.jpg", url)
		images.AssertExpectations(t)
	})

	t.Run("DBFailureCleansUpUpload", func(t *testing.T) {
		repo := new(MockBookRepository)
		images := new(MockImageStore)
		svc := newTestBookService(repo, images, nil)

		repo.On("GetByID", mock.Anything, int64(1)).Return(&models.Book{ID: 1}, nil).Once()
		images.On("UploadImage", "cover.jpg", mock.Anything).Return("/covers/new.jpg", nil).Once()
		repo.On("SetCoverURL", mock.Anything, int64(1), mock.Anything).Return(errors.New("db down")).Once()
		images.On("DeleteImage", "/covers/new.jpg").Return(true).Once()

		_, err := svc.UploadCover(ctx, 1, "cover.jpg", strings.NewReader("img"))

		assert.Error(t, err)
		images.AssertExpectations(t)
	})
}

func TestBookService_GenerateDescription(t *testing.T) {
	ctx := context.Background()
	book := &models.Book{ID: 1, Title: "Dune", Author: "Frank Herbert", Category: "Science Fiction"}

	t.Run("SavesGeneratedText", func(t *testing.T) {
		repo := new(MockBookRepository)
		gen := new(MockDescriptionGenerator)
		svc := newTestBookService(repo, new(MockImageStore), gen)

		repo.On("GetByID", mock.Anything, int64(1)).Return(book, nil).Once()
		gen.On("GenerateBookDescription", mock.Anything, "Dune", "Frank Herbert", "Science Fiction").
			Return("A sweeping desert epic.", nil).Once()
		repo.On("SetDescription", mock.Anything, int64(1), "A sweeping desert epic.").Return(nil).Once()

		description, err := svc.GenerateDescription(ctx, 1)

		assert.NoError(t, err)
		assert.Equal(t, "A sweeping desert epic.", description)
	})

	t.Run("FallsBackOnGeneratorError", func(t *testing.T) {
		repo := new(MockBookRepository)
		gen := new(MockDescriptionGenerator)
		svc := newTestBookService(repo, new(MockImageStore), gen)

		repo.On("GetByID", mock.Anything, int64(1)).Return(book, nil).Once()
		gen.On("GenerateBookDescription", mock.Anything, "Dune", "Frank Herbert", "Science Fiction").
			Return("", errors.New("quota exceeded")).Once()
		repo.On("SetDescription", mock.Anything, int64(1), mock.AnythingOfType("string")).Return(nil).Once()

		description, err := svc.GenerateDescription(ctx, 1)

		assert.NoError(t, err)
		assert.Contains(t, description, "Dune")
		assert.Contains(t, description, "Frank Herbert")
	})

	t.Run("NoGeneratorConfigured", func(t *testing.T) {
		repo := new(MockBookRepository)
		svc := newTestBookService(repo, new(MockImageStore), nil)

		repo.On("GetByID", mock.Anything, int64(1)).Return(book, nil).Once()
		repo.On("SetDescription", mock.Anything, int64(1), mock.AnythingOfType("string")).Return(nil).Once()

		description, err := svc.GenerateDescription(ctx, 1)

		assert.NoError(t, err)
		assert.Contains(t, description, "Dune")
	})
}
