package service

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/Zhandos04/library-management-system/internal/gemini"
	"github.com/Zhandos04/library-management-system/internal/models"
	"github.com/Zhandos04/library-management-system/internal/repository"
	"github.com/Zhandos04/library-management-system/internal/storage"

	"gorm.io/gorm"
)

// DescriptionGenerator is the text-generation collaborator for book
// descriptions.
type DescriptionGenerator interface {
	GenerateBookDescription(ctx context.Context, title, author, category string) (string, error)
}

type BookService interface {
	GetAll(ctx context.Context, page, pageSize int) ([]models.Book, int64, error)
	GetByID(ctx context.Context, id int64) (*models.Book, error)
	Create(ctx context.Context, b *models.Book) error
	Update(ctx context.Context, id int64, b *models.Book) error
	Delete(ctx context.Context, id int64) error
	Search(ctx context.Context, query string) ([]models.Book, error)
	UploadCover(ctx context.Context, id int64, filename string, content io.Reader) (string, error)
	DeleteCover(ctx context.Context, id int64) error
	GenerateDescription(ctx context.Context, id int64) (string, error)
}

type bookService struct {
	repo      repository.BookRepository
	images    storage.ImageStore
	generator DescriptionGenerator
	logger    *slog.Logger
}

func NewBookService(repo repository.BookRepository, images storage.ImageStore, generator DescriptionGenerator, logger *slog.Logger) BookService {
	return &bookService{
		repo:      repo,
		images:    images,
		generator: generator,
		logger:    logger,
	}
}

func (s *bookService) GetAll(ctx context.Context, page, pageSize int) ([]models.Book, int64, error) {
	return s.repo.GetAll(ctx, page, pageSize)
}

func (s *bookService) GetByID(ctx context.Context, id int64) (*models.Book, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrBookNotFound
		}
		return nil, err
	}
	return b, nil
}

// Create adds a book to the catalog. New books start with every copy on
// the shelf.
func (s *bookService) Create(ctx context.Context, b *models.Book) error {
	if b.TotalCopies < 1 {
		b.TotalCopies = 1
	}
	b.AvailableCopies = b.TotalCopies
	return s.repo.Create(ctx, b)
}

// Update edits catalog fields. A total-copies change adjusts the available
// count by the same delta so the number of copies on loan is preserved,
// clamped at zero when the total shrinks below the on-loan count.
func (s *bookService) Update(ctx context.Context, id int64, b *models.Book) error {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	b.AvailableCopies = existing.AvailableCopies
	if b.TotalCopies != existing.TotalCopies {
		b.AvailableCopies = existing.AdjustedAvailable(b.TotalCopies)
	}
	b.CoverURL = existing.CoverURL
	if b.Description == nil {
		b.Description = existing.Description
	}
	b.CreatedAt = existing.CreatedAt

	return s.repo.Update(ctx, id, b)
}

func (s *bookService) Delete(ctx context.Context, id int64) error {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.CoverURL != nil {
		if ok := s.images.DeleteImage(*existing.CoverURL); !ok {
			s.logger.Warn("failed to delete cover image", "book_id", id, "url", *existing.CoverURL)
		}
	}
	return s.repo.Delete(ctx, id)
}

func (s *bookService) Search(ctx context.Context, query string) ([]models.Book, error) {
	return s.repo.Search(ctx, query)
}

// UploadCover stores a cover image and records its URL on the book,
// replacing and cleaning up any previous cover.
func (s *bookService) UploadCover(ctx context.Context, id int64, filename string, content io.Reader) (string, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return "", err
	}

	url, err := s.images.UploadImage(filename, content)
	if err != nil {
		return "", err
	}

	if err := s.repo.SetCoverURL(ctx, id, &url); err != nil {
		s.images.DeleteImage(url)
		return "", err
	}

	if existing.CoverURL != nil {
		if ok := s.images.DeleteImage(*existing.CoverURL); !ok {
			s.logger.Warn("failed to delete previous cover image", "book_id", id, "url", *existing.CoverURL)
		}
	}
	return url, nil
}

func (s *bookService) DeleteCover(ctx context.Context, id int64) error {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.CoverURL == nil {
		return nil
	}
	if ok := s.images.DeleteImage(*existing.CoverURL); !ok {
		s.logger.Warn("failed to delete cover image", "book_id", id, "url", *existing.CoverURL)
	}
	return s.repo.SetCoverURL(ctx, id, nil)
}

// GenerateDescription asks the text-generation collaborator for a
// description and saves it on the book. Generation failures degrade to a
// deterministic fallback text rather than failing the request.
func (s *bookService) GenerateDescription(ctx context.Context, id int64) (string, error) {
	book, err := s.GetByID(ctx, id)
	if err != nil {
		return "", err
	}

	var description string
	if s.generator == nil {
		description = gemini.FallbackDescription(book.Title, book.Author, book.Category)
	} else if description, err = s.generator.GenerateBookDescription(ctx, book.Title, book.Author, book.Category); err != nil {
		s.logger.Warn("description generation failed, using fallback", "book_id", id, "error", err)
		description = gemini.FallbackDescription(book.Title, book.Author, book.Category)
	}

	if err := s.repo.SetDescription(ctx, id, description); err != nil {
		return "", err
	}
	return description, nil
}
