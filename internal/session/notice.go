package session

import (
	"errors"

	"github.com/raine/balla/internal/analysis"
	"github.com/raine/balla/internal/i18n"
	"github.com/raine/balla/internal/imageprep"
)

// NoticeKind lets a front end style a notice without parsing its text.
type NoticeKind string

const (
	NoticeValidation  NoticeKind = "validation"
	NoticeError       NoticeKind = "error"
	NoticeNotSellable NoticeKind = "not_sellable"
	NoticeWarning     NoticeKind = "warning"
)

// Notice is a user-facing message delivered outside of the screen state.
type Notice struct {
	Kind    NoticeKind
	Title   string
	Message string
	// Code is set when the notice comes from an analysis failure.
	Code analysis.Code
}

// Notifier receives notices. Implementations must not block for long; they
// are called with the session unlocked.
type Notifier interface {
	Notify(n Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

type discardNotifier struct{}

func (discardNotifier) Notify(Notice) {}

var validationMessages = map[string]i18n.Key{
	analysis.FieldImage:        i18n.MissingImage,
	analysis.FieldRegion:       i18n.MissingRegion,
	analysis.FieldCondition:    i18n.MissingCondition,
	analysis.FieldPurchaseYear: i18n.InvalidYear,
}

// noticeFor turns a submit or image error into a localized notice. The
// not-sellable message from the service is passed through verbatim.
func noticeFor(lang i18n.Language, err error) Notice {
	if errors.Is(err, imageprep.ErrImageDecode) || errors.Is(err, imageprep.ErrNotImage) {
		return Notice{Kind: NoticeError, Title: i18n.T(lang, i18n.ErrorTitle), Message: err.Error()}
	}

	ae, ok := analysis.AsError(err)
	if !ok {
		return Notice{Kind: NoticeError, Title: i18n.T(lang, i18n.ErrorTitle), Message: err.Error(), Code: analysis.CodeUnexpected}
	}

	n := Notice{Kind: NoticeError, Title: i18n.T(lang, i18n.ErrorTitle), Message: ae.Message, Code: ae.Code}
	switch ae.Code {
	case analysis.CodeValidation:
		n.Kind = NoticeValidation
		n.Title = i18n.T(lang, i18n.ValidationTitle)
		if key, ok := validationMessages[ae.Field]; ok {
			n.Message = i18n.T(lang, key)
		}
	case analysis.CodeNotSellable:
		n.Kind = NoticeNotSellable
		n.Title = i18n.T(lang, i18n.NotSellableTitle)
	case analysis.CodeRateLimited:
		n.Message = i18n.T(lang, i18n.RateLimitedMsg)
	case analysis.CodePaymentRequired:
		n.Message = i18n.T(lang, i18n.PaymentRequiredMsg)
	case analysis.CodeMalformedResponse:
		n.Message = i18n.T(lang, i18n.MalformedMsg)
	}
	if n.Message == "" {
		n.Message = err.Error()
	}
	return n
}
