package domain

import (
	"errors"
	"strings"
)

var (
	ErrArticleNotFound  = errors.New("article not found")
	ErrAuctionNotOpen   = errors.New("auction is not open for bidding")
	ErrBidTooLow        = errors.New("bid amount does not exceed the current best bid")
	ErrAuctionStillOpen = errors.New("auction has no winner yet")
)

// RuleCode identifies one business rule violated by an article write.
type RuleCode string

const (
	CodeNameMissing         RuleCode = "NAME_MISSING"
	CodeNameTooLong         RuleCode = "NAME_TOO_LONG"
	CodeDescriptionTooLong  RuleCode = "DESCRIPTION_TOO_LONG"
	CodeDatesNull           RuleCode = "DATES_NULL"
	CodeDateInPast          RuleCode = "DATE_IN_PAST"
	CodeDateInconsistent    RuleCode = "DATE_INCONSISTENT"
	CodePriceInitialInvalid RuleCode = "PRICE_INITIAL_INVALID"
	CodePriceSaleInvalid    RuleCode = "PRICE_SALE_INVALID"
	CodeSellerMissing       RuleCode = "SELLER_MISSING"
	CodeSellerUnknown       RuleCode = "SELLER_UNKNOWN"
	CodeCategoryMissing     RuleCode = "CATEGORY_MISSING"
	CodeCategoryUnknown     RuleCode = "CATEGORY_UNKNOWN"
	CodeDeleteInProgress    RuleCode = "DELETE_AUCTION_IN_PROGRESS"
	CodeDeleteFailed        RuleCode = "DELETE_FAILED"
)

// ValidationError carries the ordered, deduplicated rule codes accumulated by
// the validation engine. It is always recoverable by the caller: correct the
// input and retry.
type ValidationError struct {
	Codes []RuleCode
}

func NewValidationError(codes []RuleCode) *ValidationError {
	return &ValidationError{Codes: codes}
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Codes))
	for i, c := range e.Codes {
		parts[i] = string(c)
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// AsValidationError unwraps err into a ValidationError, or returns nil when
// err is an operation failure instead.
func AsValidationError(err error) *ValidationError {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve
	}
	return nil
}
