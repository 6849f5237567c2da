// Package session sequences one user's appraisal flow: pick a region,
// attach a photo, submit, look at the result, start over.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/raine/balla/internal/analysis"
	"github.com/raine/balla/internal/history"
	"github.com/raine/balla/internal/i18n"
	"github.com/raine/balla/internal/imageprep"
	"github.com/raine/balla/internal/region"
	"github.com/rs/zerolog/log"
)

type Screen int

const (
	Idle Screen = iota
	Analyzing
	Results
)

func (s Screen) String() string {
	switch s {
	case Idle:
		return "idle"
	case Analyzing:
		return "analyzing"
	case Results:
		return "results"
	}
	return fmt.Sprintf("screen(%d)", int(s))
}

var (
	// ErrBusy is returned when an action is not allowed on the current
	// screen, e.g. a second submit while one is in flight.
	ErrBusy = errors.New("session is busy")
	// ErrImageSuperseded is returned by LoadImage when a newer image was
	// loaded while this one was being prepared.
	ErrImageSuperseded = errors.New("image superseded by a newer one")
)

// Submitter performs one analysis round trip. *analysis.Client satisfies it.
type Submitter interface {
	Submit(ctx context.Context, req analysis.Request) (*analysis.Result, error)
	RequiresCondition() bool
}

// Language reports the current UI language. *settings.Settings satisfies it.
type Language interface {
	Language() i18n.Language
}

type fixedLanguage i18n.Language

func (l fixedLanguage) Language() i18n.Language { return i18n.Language(l) }

type Opts struct {
	Submitter Submitter
	History   *history.History
	// Notifier receives validation and error notices. Optional.
	Notifier Notifier
	// Language selects notice translations. Defaults to Arabic.
	Language Language
	// Now is used for purchase year validation. Defaults to time.Now.
	Now func() time.Time
}

// Session is the screen state machine. All methods are safe for concurrent
// use; Submit and LoadImage do their slow work without holding the lock.
type Session struct {
	mu sync.Mutex

	submitter Submitter
	history   *history.History
	notifier  Notifier
	lang      Language
	now       func() time.Time

	screen    Screen
	region    region.ID
	condition analysis.Condition
	year      int
	image     *imageprep.Image
	result    *analysis.Result

	// imageSeq increments on every LoadImage so a slow preparation cannot
	// overwrite a newer image.
	imageSeq uint64
}

func New(opts Opts) *Session {
	s := &Session{
		submitter: opts.Submitter,
		history:   opts.History,
		notifier:  opts.Notifier,
		lang:      opts.Language,
		now:       opts.Now,
	}
	if s.history == nil {
		s.history = history.New()
	}
	if s.notifier == nil {
		s.notifier = discardNotifier{}
	}
	if s.lang == nil {
		s.lang = fixedLanguage(i18n.Arabic)
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *Session) Screen() Screen {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.screen
}

func (s *Session) Region() region.ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.region
}

func (s *Session) Condition() analysis.Condition {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.condition
}

func (s *Session) PurchaseYear() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.year
}

func (s *Session) Image() *imageprep.Image {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.image
}

// Result returns the result being shown, or nil outside of Results.
func (s *Session) Result() *analysis.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

func (s *Session) History() *history.History {
	return s.history
}

// RequiresCondition reports whether a declared condition must be chosen
// before submitting.
func (s *Session) RequiresCondition() bool {
	return s.submitter.RequiresCondition()
}

// SelectRegion sets the governorate used for the next submission.
func (s *Session) SelectRegion(id region.ID) error {
	if _, err := region.Lookup(id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.screen != Idle {
		return ErrBusy
	}
	s.region = id
	return nil
}

func (s *Session) SetCondition(c analysis.Condition) error {
	if _, err := analysis.ParseCondition(string(c)); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.screen != Idle {
		return ErrBusy
	}
	s.condition = c
	return nil
}

// SetPurchaseYear sets the optional purchase year. Zero clears it.
func (s *Session) SetPurchaseYear(year int) error {
	if year != 0 {
		if err := analysis.ValidatePurchaseYear(year, s.now()); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.screen != Idle {
		return ErrBusy
	}
	s.year = year
	return nil
}

// LoadImage prepares data and makes it the current photo. When several
// loads overlap, only the most recently started one is kept.
func (s *Session) LoadImage(ctx context.Context, data []byte) (*imageprep.Image, error) {
	s.mu.Lock()
	if s.screen != Idle {
		s.mu.Unlock()
		return nil, ErrBusy
	}
	s.imageSeq++
	seq := s.imageSeq
	s.mu.Unlock()

	img, err := imageprep.Prepare(data)
	if err == nil {
		err = ctx.Err()
	}

	s.mu.Lock()
	if seq != s.imageSeq {
		s.mu.Unlock()
		log.Debug().Uint64("seq", seq).Msg("discarding superseded image")
		return nil, ErrImageSuperseded
	}
	if err != nil {
		s.mu.Unlock()
		if errors.Is(err, imageprep.ErrImageDecode) {
			s.notifier.Notify(noticeFor(s.lang.Language(), err))
		}
		return nil, err
	}
	if s.screen != Idle {
		s.mu.Unlock()
		return nil, ErrBusy
	}
	s.image = img
	s.mu.Unlock()
	return img, nil
}

// Submit runs one analysis from Idle. Missing fields produce a validation
// notice without leaving Idle. On success the session moves to Results and
// the result is added to history; on any failure it returns to Idle with
// the selection intact and a notice describing the failure.
func (s *Session) Submit(ctx context.Context) (*analysis.Result, error) {
	s.mu.Lock()
	if s.screen != Idle {
		s.mu.Unlock()
		return nil, ErrBusy
	}
	req := analysis.Request{
		Region:       s.region,
		Condition:    s.condition,
		PurchaseYear: s.year,
	}
	if s.image != nil {
		req.ImageDataURI = s.image.DataURI
	}
	if verr := req.Validate(s.submitter.RequiresCondition(), s.now()); verr != nil {
		s.mu.Unlock()
		s.notifier.Notify(noticeFor(s.lang.Language(), verr))
		return nil, verr
	}
	s.screen = Analyzing
	s.mu.Unlock()

	log.Info().
		Str("region", string(req.Region)).
		Str("condition", string(req.Condition)).
		Int("purchaseYear", req.PurchaseYear).
		Msg("submitting analysis")

	result, err := s.submit(ctx, req)

	s.mu.Lock()
	if err != nil {
		s.screen = Idle
		s.mu.Unlock()
		log.Warn().Err(err).Msg("analysis failed")
		s.notifier.Notify(noticeFor(s.lang.Language(), err))
		return nil, err
	}
	s.screen = Results
	s.result = result
	s.history.Add(req.Region, result)
	s.mu.Unlock()

	if len(result.Warnings) > 0 {
		lang := s.lang.Language()
		s.notifier.Notify(Notice{
			Kind:    NoticeWarning,
			Title:   i18n.T(lang, i18n.ResultWarningsTitle),
			Message: strings.Join(result.Warnings, "; "),
		})
	}
	return result, nil
}

// submit calls the submitter so that a panic or an empty reply becomes an
// ordinary failure and the session can return to Idle.
func (s *Session) submit(ctx context.Context, req analysis.Request) (result *analysis.Result, err error) {
	defer func() {
		if p := recover(); p != nil {
			log.Error().Interface("panic", p).Msg("recovered panic in submitter")
			result = nil
			err = &analysis.Error{Code: analysis.CodeUnexpected, Message: fmt.Sprintf("unexpected failure: %v", p)}
		}
	}()

	result, err = s.submitter.Submit(ctx, req)
	if err == nil && result == nil {
		return nil, &analysis.Error{Code: analysis.CodeMalformedResponse, Message: "analysis returned no result"}
	}
	return result, err
}

// Reset starts a new item: it returns to Idle and clears the photo, the
// result, the condition and the year. The region and history are kept.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.screen == Analyzing {
		return ErrBusy
	}
	s.reset()
	return nil
}

func (s *Session) reset() {
	s.screen = Idle
	s.image = nil
	s.result = nil
	s.condition = ""
	s.year = 0
	// Drop any preparation still in flight.
	s.imageSeq++
}

// Back navigates one step: from Results it is Reset, from Idle it clears
// the region to return to region selection. It is ignored while Analyzing.
func (s *Session) Back() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.screen {
	case Analyzing:
		return ErrBusy
	case Results:
		s.reset()
	case Idle:
		s.region = ""
	}
	return nil
}
