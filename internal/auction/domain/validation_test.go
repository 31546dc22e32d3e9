package domain_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"encheres/internal/auction/domain"
	"encheres/internal/auction/infra/repository/memory"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

type fixedClock struct {
	day time.Time
}

func (c fixedClock) Today() time.Time {
	return domain.DateOnly(c.day)
}

var today = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func validArticle() *domain.Article {
	return &domain.Article{
		Name:          "Vintage turntable",
		Description:   "Working order, original cables",
		StartingPrice: 100,
		StartDate:     today,
		EndDate:       today.AddDate(0, 0, 7),
		CategoryID:    1,
		SellerID:      1,
	}
}

func newValidator(store *memory.Store) *domain.Validator {
	return domain.NewValidator(
		fixedClock{day: today},
		memory.NewDirectory(1, 2),
		memory.NewDirectory(1, 2),
		store.Articles(),
	)
}

func TestValidateArticle(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*domain.Article)
		expected []domain.RuleCode
	}{
		{
			name:     "valid_article",
			mutate:   func(a *domain.Article) {},
			expected: nil,
		},
		{
			name:     "blank_name",
			mutate:   func(a *domain.Article) { a.Name = "   " },
			expected: []domain.RuleCode{domain.CodeNameMissing},
		},
		{
			name:     "name_too_long_after_trim",
			mutate:   func(a *domain.Article) { a.Name = "  " + strings.Repeat("x", 31) + "  " },
			expected: []domain.RuleCode{domain.CodeNameTooLong},
		},
		{
			name:     "name_exactly_30_is_fine",
			mutate:   func(a *domain.Article) { a.Name = strings.Repeat("x", 30) },
			expected: nil,
		},
		{
			name:     "description_too_long",
			mutate:   func(a *domain.Article) { a.Description = strings.Repeat("d", 301) },
			expected: []domain.RuleCode{domain.CodeDescriptionTooLong},
		},
		{
			name:     "missing_dates",
			mutate:   func(a *domain.Article) { a.StartDate = time.Time{}; a.EndDate = time.Time{} },
			expected: []domain.RuleCode{domain.CodeDatesNull},
		},
		{
			name:     "start_in_past",
			mutate:   func(a *domain.Article) { a.StartDate = today.AddDate(0, 0, -1) },
			expected: []domain.RuleCode{domain.CodeDateInPast},
		},
		{
			name:     "end_before_start",
			mutate:   func(a *domain.Article) { a.EndDate = a.StartDate.AddDate(0, 0, -2) },
			expected: []domain.RuleCode{domain.CodeDateInconsistent},
		},
		{
			// the three date rules are a priority chain: a past start hides
			// the inconsistent end
			name: "past_start_wins_over_inconsistent_end",
			mutate: func(a *domain.Article) {
				a.StartDate = today.AddDate(0, 0, -3)
				a.EndDate = today.AddDate(0, 0, -5)
			},
			expected: []domain.RuleCode{domain.CodeDateInPast},
		},
		{
			name:     "zero_starting_price",
			mutate:   func(a *domain.Article) { a.StartingPrice = 0 },
			expected: []domain.RuleCode{domain.CodePriceInitialInvalid},
		},
		{
			name:     "negative_sale_price",
			mutate:   func(a *domain.Article) { a.SalePrice = -5 },
			expected: []domain.RuleCode{domain.CodePriceSaleInvalid},
		},
		{
			name:     "sale_price_below_starting",
			mutate:   func(a *domain.Article) { a.SalePrice = 50 },
			expected: []domain.RuleCode{domain.CodePriceSaleInvalid},
		},
		{
			name:     "sale_price_at_starting_is_fine",
			mutate:   func(a *domain.Article) { a.SalePrice = 100 },
			expected: nil,
		},
		{
			name:     "missing_seller",
			mutate:   func(a *domain.Article) { a.SellerID = 0 },
			expected: []domain.RuleCode{domain.CodeSellerMissing},
		},
		{
			name:     "unknown_seller",
			mutate:   func(a *domain.Article) { a.SellerID = 99 },
			expected: []domain.RuleCode{domain.CodeSellerUnknown},
		},
		{
			name:     "missing_category",
			mutate:   func(a *domain.Article) { a.CategoryID = 0 },
			expected: []domain.RuleCode{domain.CodeCategoryMissing},
		},
		{
			name:     "unknown_category",
			mutate:   func(a *domain.Article) { a.CategoryID = 42 },
			expected: []domain.RuleCode{domain.CodeCategoryUnknown},
		},
		{
			// independent rules accumulate in rule order
			name: "multiple_violations_accumulate_in_order",
			mutate: func(a *domain.Article) {
				a.Name = ""
				a.StartingPrice = -1
				a.SellerID = 0
				a.CategoryID = 0
			},
			expected: []domain.RuleCode{
				domain.CodeNameMissing,
				domain.CodePriceInitialInvalid,
				domain.CodeSellerMissing,
				domain.CodeCategoryMissing,
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v := newValidator(memory.NewStore())
			article := validArticle()
			tc.mutate(article)

			codes := v.ValidateArticle(context.Background(), article)
			require.Equal(t, tc.expected, codes)
		})
	}
}

func TestValidateArticleLookupFailure(t *testing.T) {
	boom := errors.New("directory unavailable")
	v := domain.NewValidator(
		fixedClock{day: today},
		memory.FailingDirectory(boom),
		memory.FailingDirectory(boom),
		memory.NewStore().Articles(),
	)

	codes := v.ValidateArticle(context.Background(), validArticle())
	require.Equal(t, []domain.RuleCode{domain.CodeSellerUnknown, domain.CodeCategoryUnknown}, codes)
}

func TestValidateDeletion(t *testing.T) {
	ctx := context.Background()

	t.Run("upcoming_auction_is_deletable", func(t *testing.T) {
		store := memory.NewStore()
		a := validArticle()
		a.StartDate = today.AddDate(0, 0, 1)
		require.NoError(t, store.Articles().Insert(ctx, a))

		require.Empty(t, newValidator(store).ValidateDeletion(ctx, a.ID))
	})

	t.Run("started_auction_blocks_deletion", func(t *testing.T) {
		store := memory.NewStore()
		a := validArticle() // starts today
		require.NoError(t, store.Articles().Insert(ctx, a))

		codes := newValidator(store).ValidateDeletion(ctx, a.ID)
		require.Equal(t, []domain.RuleCode{domain.CodeDeleteInProgress}, codes)
	})

	t.Run("unknown_article_yields_no_code", func(t *testing.T) {
		require.Empty(t, newValidator(memory.NewStore()).ValidateDeletion(ctx, 404))
	})

	t.Run("lookup_failure_yields_delete_failed", func(t *testing.T) {
		v := domain.NewValidator(
			fixedClock{day: today},
			memory.NewDirectory(1),
			memory.NewDirectory(1),
			failingArticleRepo{err: errors.New("db down")},
		)
		codes := v.ValidateDeletion(ctx, 1)
		require.Equal(t, []domain.RuleCode{domain.CodeDeleteFailed}, codes)
	})
}

// Any trimmed name longer than 30 runes is rejected, any shorter one passes
// the name rule.
func TestValidateArticleNameLengthProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		v := newValidator(memory.NewStore())
		n := rapid.IntRange(1, 120).Draw(t, "length")
		article := validArticle()
		article.Name = strings.Repeat("é", n)

		codes := v.ValidateArticle(context.Background(), article)
		if n > 30 {
			require.Equal(t, []domain.RuleCode{domain.CodeNameTooLong}, codes)
		} else {
			require.Empty(t, codes)
		}
	})
}

type failingArticleRepo struct {
	domain.ArticleRepository
	err error
}

func (r failingArticleRepo) GetByID(context.Context, int) (*domain.Article, error) {
	return nil, r.err
}
