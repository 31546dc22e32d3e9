package domain

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"
)

const (
	maxNameLen        = 30
	maxDescriptionLen = 300
)

// Validator is the shared rule-checking engine behind article creation,
// update and deletion. It never returns a Go error for invalid input:
// invalid input is exactly what the returned code list reports. Every rule
// is evaluated, codes accumulate in rule order and duplicates are dropped.
type Validator struct {
	clock      Clock
	users      UserLookup
	categories CategoryLookup
	articles   ArticleRepository
}

func NewValidator(clock Clock, users UserLookup, categories CategoryLookup, articles ArticleRepository) *Validator {
	return &Validator{
		clock:      clock,
		users:      users,
		categories: categories,
		articles:   articles,
	}
}

// ValidateArticle checks an article candidate for creation or update.
func (v *Validator) ValidateArticle(ctx context.Context, a *Article) []RuleCode {
	var codes []RuleCode

	codes = v.checkName(a.Name, codes)
	codes = v.checkDescription(a.Description, codes)
	codes = v.checkDates(a, codes)
	codes = v.checkStartingPrice(a.StartingPrice, codes)
	codes = v.checkSalePrice(a.SalePrice, a.StartingPrice, codes)
	codes = v.checkSeller(ctx, a.SellerID, codes)
	codes = v.checkCategory(ctx, a.CategoryID, codes)

	return codes
}

// ValidateDeletion checks that the article may still be removed. Deletion is
// only allowed while the auction window has not opened.
func (v *Validator) ValidateDeletion(ctx context.Context, id int) []RuleCode {
	var codes []RuleCode

	article, err := v.articles.GetByID(ctx, id)
	switch {
	case errors.Is(err, ErrArticleNotFound):
		// nothing to block
	case err != nil:
		codes = appendCode(codes, CodeDeleteFailed)
	default:
		if !v.clock.Today().Before(DateOnly(article.StartDate)) {
			codes = appendCode(codes, CodeDeleteInProgress)
		}
	}

	return codes
}

func (v *Validator) checkName(name string, codes []RuleCode) []RuleCode {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return appendCode(codes, CodeNameMissing)
	}
	if utf8.RuneCountInString(trimmed) > maxNameLen {
		return appendCode(codes, CodeNameTooLong)
	}
	return codes
}

func (v *Validator) checkDescription(description string, codes []RuleCode) []RuleCode {
	if utf8.RuneCountInString(strings.TrimSpace(description)) > maxDescriptionLen {
		return appendCode(codes, CodeDescriptionTooLong)
	}
	return codes
}

// checkDates is a first-applicable chain: at most one of the three date codes
// fires per validation call.
func (v *Validator) checkDates(a *Article, codes []RuleCode) []RuleCode {
	start := DateOnly(a.StartDate)
	end := DateOnly(a.EndDate)
	switch {
	case a.StartDate.IsZero() || a.EndDate.IsZero():
		return appendCode(codes, CodeDatesNull)
	case start.Before(v.clock.Today()):
		return appendCode(codes, CodeDateInPast)
	case end.Before(start):
		return appendCode(codes, CodeDateInconsistent)
	}
	return codes
}

func (v *Validator) checkStartingPrice(price int, codes []RuleCode) []RuleCode {
	if price <= 0 {
		return appendCode(codes, CodePriceInitialInvalid)
	}
	return codes
}

func (v *Validator) checkSalePrice(salePrice, startingPrice int, codes []RuleCode) []RuleCode {
	if salePrice < 0 || (salePrice > 0 && salePrice < startingPrice) {
		return appendCode(codes, CodePriceSaleInvalid)
	}
	return codes
}

func (v *Validator) checkSeller(ctx context.Context, sellerID int, codes []RuleCode) []RuleCode {
	if sellerID == 0 {
		return appendCode(codes, CodeSellerMissing)
	}
	found, err := v.users.ResolveUser(ctx, sellerID)
	if err != nil || !found {
		return appendCode(codes, CodeSellerUnknown)
	}
	return codes
}

func (v *Validator) checkCategory(ctx context.Context, categoryID int, codes []RuleCode) []RuleCode {
	if categoryID == 0 {
		return appendCode(codes, CodeCategoryMissing)
	}
	found, err := v.categories.ResolveCategory(ctx, categoryID)
	if err != nil || !found {
		return appendCode(codes, CodeCategoryUnknown)
	}
	return codes
}

func appendCode(codes []RuleCode, code RuleCode) []RuleCode {
	for _, c := range codes {
		if c == code {
			return codes
		}
	}
	return append(codes, code)
}
