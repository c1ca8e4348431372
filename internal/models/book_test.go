package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBook_AdjustedAvailable(t *testing.T) {
	t.Run("GrowKeepsCopiesOnLoan", func(t *testing.T) {
		b := &Book{TotalCopies: 5, AvailableCopies: 4}
		assert.Equal(t, 7, b.AdjustedAvailable(8))
	})

	t.Run("ShrinkKeepsCopiesOnLoan", func(t *testing.T) {
		b := &Book{TotalCopies: 5, AvailableCopies: 4}
		assert.Equal(t, 2, b.AdjustedAvailable(3))
	})

	t.Run("ShrinkBelowOnLoanClampsAtZero", func(t *testing.T) {
		// 4 copies on loan, shrinking to 2 cannot leave -2 available.
		b := &Book{TotalCopies: 5, AvailableCopies: 1}
		assert.Equal(t, 0, b.AdjustedAvailable(2))
	})

	t.Run("NeverExceedsNewTotal", func(t *testing.T) {
		b := &Book{TotalCopies: 3, AvailableCopies: 3}
		assert.Equal(t, 2, b.AdjustedAvailable(2))
	})

	t.Run("UnchangedTotal", func(t *testing.T) {
		b := &Book{TotalCopies: 5, AvailableCopies: 2}
		assert.Equal(t, 2, b.AdjustedAvailable(5))
	})
}

func TestBook_CopiesOnLoan(t *testing.T) {
	b := &Book{TotalCopies: 5, AvailableCopies: 2}
	assert.Equal(t, 3, b.CopiesOnLoan())
}
