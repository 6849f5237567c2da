package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/raine/balla/internal/analysis"
	"github.com/raine/balla/internal/i18n"
	"github.com/raine/balla/internal/imageprep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockSubmitter implements Submitter with function fields.
type MockSubmitter struct {
	SubmitFunc       func(ctx context.Context, req analysis.Request) (*analysis.Result, error)
	RequireCondition bool
	calls            int
	mu               sync.Mutex
}

func (m *MockSubmitter) Submit(ctx context.Context, req analysis.Request) (*analysis.Result, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.SubmitFunc != nil {
		return m.SubmitFunc(ctx, req)
	}
	return sampleResult(), nil
}

func (m *MockSubmitter) RequiresCondition() bool { return m.RequireCondition }

func (m *MockSubmitter) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type recordingNotifier struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *recordingNotifier) Notify(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

func (r *recordingNotifier) All() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notice(nil), r.notices...)
}

func fixedNow() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func sampleResult() *analysis.Result {
	return &analysis.Result{
		ItemType:       "Electronics",
		ItemName:       "iPhone 13 Pro Max",
		Condition:      analysis.ConditionGood,
		ConditionScore: 78,
		LowestPrice:    720000,
		AveragePrice:   850000,
		HighestPrice:   980000,
		SuggestedPrice: 830000,
		Recommendation: "اعرضه بالسعر المقترح",
	}
}

func pngImage(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.SetGray(x, h/2, color.Gray{Y: 200})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newTestSession(sub Submitter) (*Session, *recordingNotifier) {
	n := &recordingNotifier{}
	return New(Opts{Submitter: sub, Notifier: n, Now: fixedNow}), n
}

// readySession returns a session with a region, condition and photo set.
func readySession(t *testing.T, sub Submitter) (*Session, *recordingNotifier) {
	t.Helper()
	s, n := newTestSession(sub)
	require.NoError(t, s.SelectRegion("basra"))
	require.NoError(t, s.SetCondition(analysis.DeclaredCleanUsed))
	_, err := s.LoadImage(context.Background(), pngImage(t, 64, 48))
	require.NoError(t, err)
	return s, n
}

func TestSubmit_MissingInputsStayIdle(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T, s *Session)
		field   string
		message string
	}{
		{
			name:    "no image",
			setup:   func(t *testing.T, s *Session) { require.NoError(t, s.SelectRegion("basra")) },
			field:   analysis.FieldImage,
			message: i18n.T(i18n.Arabic, i18n.MissingImage),
		},
		{
			name: "no region",
			setup: func(t *testing.T, s *Session) {
				_, err := s.LoadImage(context.Background(), pngImage(t, 10, 10))
				require.NoError(t, err)
			},
			field:   analysis.FieldRegion,
			message: i18n.T(i18n.Arabic, i18n.MissingRegion),
		},
		{
			name: "no condition",
			setup: func(t *testing.T, s *Session) {
				require.NoError(t, s.SelectRegion("basra"))
				_, err := s.LoadImage(context.Background(), pngImage(t, 10, 10))
				require.NoError(t, err)
			},
			field:   analysis.FieldCondition,
			message: i18n.T(i18n.Arabic, i18n.MissingCondition),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := &MockSubmitter{RequireCondition: true}
			s, n := newTestSession(sub)
			tt.setup(t, s)

			_, err := s.Submit(context.Background())
			require.Error(t, err)

			ae, ok := analysis.AsError(err)
			require.True(t, ok)
			assert.Equal(t, analysis.CodeValidation, ae.Code)
			assert.Equal(t, tt.field, ae.Field)
			assert.Equal(t, Idle, s.Screen())
			assert.Zero(t, sub.Calls())
			assert.Zero(t, s.History().Len())

			notices := n.All()
			require.Len(t, notices, 1)
			assert.Equal(t, NoticeValidation, notices[0].Kind)
			assert.Equal(t, tt.message, notices[0].Message)
		})
	}
}

func TestSubmit_Success(t *testing.T) {
	sub := &MockSubmitter{RequireCondition: true}
	s, n := readySession(t, sub)

	result, err := s.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Results, s.Screen())
	assert.Same(t, result, s.Result())
	assert.Equal(t, 1, s.History().Len())
	assert.Empty(t, n.All())

	latest, ok := s.History().Latest()
	require.True(t, ok)
	assert.Equal(t, "basra", string(latest.Region))
}

func TestSubmit_ErrorsReturnToIdleKeepingSelection(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		kind  NoticeKind
		title string
	}{
		{"transport", &analysis.Error{Code: analysis.CodeTransport, Message: "connection refused"}, NoticeError, i18n.T(i18n.Arabic, i18n.ErrorTitle)},
		{"rate limited", &analysis.Error{Code: analysis.CodeRateLimited, Status: 429}, NoticeError, i18n.T(i18n.Arabic, i18n.ErrorTitle)},
		{"malformed", &analysis.Error{Code: analysis.CodeMalformedResponse}, NoticeError, i18n.T(i18n.Arabic, i18n.ErrorTitle)},
		{"not sellable", &analysis.Error{Code: analysis.CodeNotSellable, Message: "هذا العنصر غير قابل للبيع"}, NoticeNotSellable, i18n.T(i18n.Arabic, i18n.NotSellableTitle)},
		{"plain error", errors.New("boom"), NoticeError, i18n.T(i18n.Arabic, i18n.ErrorTitle)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := &MockSubmitter{
				RequireCondition: true,
				SubmitFunc: func(ctx context.Context, req analysis.Request) (*analysis.Result, error) {
					return nil, tt.err
				},
			}
			s, n := readySession(t, sub)
			prepared := s.Image()

			_, err := s.Submit(context.Background())
			require.Error(t, err)

			assert.Equal(t, Idle, s.Screen())
			assert.Nil(t, s.Result())
			assert.Zero(t, s.History().Len())
			assert.Same(t, prepared, s.Image())
			assert.Equal(t, "basra", string(s.Region()))
			assert.Equal(t, analysis.DeclaredCleanUsed, s.Condition())

			notices := n.All()
			require.Len(t, notices, 1)
			assert.Equal(t, tt.kind, notices[0].Kind)
			assert.Equal(t, tt.title, notices[0].Title)
			assert.NotEmpty(t, notices[0].Message)
		})
	}
}

func TestSubmit_BusyWhileAnalyzing(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	sub := &MockSubmitter{
		RequireCondition: true,
		SubmitFunc: func(ctx context.Context, req analysis.Request) (*analysis.Result, error) {
			close(started)
			<-release
			return sampleResult(), nil
		},
	}
	s, _ := readySession(t, sub)

	done := make(chan error, 1)
	go func() {
		_, err := s.Submit(context.Background())
		done <- err
	}()

	<-started
	assert.Equal(t, Analyzing, s.Screen())

	_, err := s.Submit(context.Background())
	assert.ErrorIs(t, err, ErrBusy)
	assert.ErrorIs(t, s.Reset(), ErrBusy)
	assert.ErrorIs(t, s.Back(), ErrBusy)
	assert.ErrorIs(t, s.SelectRegion("erbil"), ErrBusy)
	_, err = s.LoadImage(context.Background(), pngImage(t, 8, 8))
	assert.ErrorIs(t, err, ErrBusy)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, Results, s.Screen())
	assert.Equal(t, 1, sub.Calls())
	assert.Equal(t, 1, s.History().Len())
}

func TestSubmit_FromResultsIsBusy(t *testing.T) {
	sub := &MockSubmitter{RequireCondition: true}
	s, _ := readySession(t, sub)
	_, err := s.Submit(context.Background())
	require.NoError(t, err)

	_, err = s.Submit(context.Background())
	assert.ErrorIs(t, err, ErrBusy)
	assert.Equal(t, 1, sub.Calls())
}

func TestSubmit_WarningsProduceNotice(t *testing.T) {
	sub := &MockSubmitter{
		RequireCondition: true,
		SubmitFunc: func(ctx context.Context, req analysis.Request) (*analysis.Result, error) {
			r := sampleResult()
			r.Warnings = []string{"suggestedPrice is above highestPrice"}
			return r, nil
		},
	}
	s, n := readySession(t, sub)

	_, err := s.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Results, s.Screen())

	notices := n.All()
	require.Len(t, notices, 1)
	assert.Equal(t, NoticeWarning, notices[0].Kind)
}

func TestReset_KeepsRegionAndHistory(t *testing.T) {
	s, _ := readySession(t, &MockSubmitter{RequireCondition: true})
	require.NoError(t, s.SetPurchaseYear(2020))
	_, err := s.Submit(context.Background())
	require.NoError(t, err)

	require.NoError(t, s.Reset())
	assert.Equal(t, Idle, s.Screen())
	assert.Nil(t, s.Image())
	assert.Nil(t, s.Result())
	assert.Empty(t, s.Condition())
	assert.Zero(t, s.PurchaseYear())
	assert.Equal(t, "basra", string(s.Region()))
	assert.Equal(t, 1, s.History().Len())
}

func TestBack(t *testing.T) {
	s, _ := readySession(t, &MockSubmitter{RequireCondition: true})
	_, err := s.Submit(context.Background())
	require.NoError(t, err)

	require.NoError(t, s.Back())
	assert.Equal(t, Idle, s.Screen())
	assert.Nil(t, s.Result())
	assert.Equal(t, "basra", string(s.Region()))

	require.NoError(t, s.Back())
	assert.Equal(t, Idle, s.Screen())
	assert.Empty(t, s.Region())
	assert.Equal(t, 1, s.History().Len())
}

func TestSelectRegion_Unknown(t *testing.T) {
	s, _ := newTestSession(&MockSubmitter{})
	assert.Error(t, s.SelectRegion("atlantis"))
	assert.Empty(t, s.Region())
}

func TestSetPurchaseYear(t *testing.T) {
	s, _ := newTestSession(&MockSubmitter{})
	require.NoError(t, s.SetPurchaseYear(2023))
	assert.Equal(t, 2023, s.PurchaseYear())

	assert.Error(t, s.SetPurchaseYear(2030))
	assert.Equal(t, 2023, s.PurchaseYear())

	require.NoError(t, s.SetPurchaseYear(0))
	assert.Zero(t, s.PurchaseYear())
}

func TestLoadImage_DecodeErrorNotifies(t *testing.T) {
	s, n := newTestSession(&MockSubmitter{})
	_, err := s.LoadImage(context.Background(), []byte("not an image"))
	require.Error(t, err)
	assert.ErrorIs(t, err, imageprep.ErrImageDecode)
	assert.Nil(t, s.Image())

	notices := n.All()
	require.Len(t, notices, 1)
	assert.Equal(t, NoticeError, notices[0].Kind)
}

func TestLoadImage_ConcurrentLoadsKeepNewest(t *testing.T) {
	s, _ := newTestSession(&MockSubmitter{})

	inputs := make([][]byte, 8)
	for i := range inputs {
		inputs[i] = pngImage(t, 16+i, 16)
	}

	var wg sync.WaitGroup
	results := make([]error, len(inputs))
	for i := range inputs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = s.LoadImage(context.Background(), inputs[i])
		}(i)
	}
	wg.Wait()

	var kept int
	for _, err := range results {
		if err == nil {
			kept++
		} else {
			assert.ErrorIs(t, err, ErrImageSuperseded)
		}
	}
	assert.GreaterOrEqual(t, kept, 1)
	assert.NotNil(t, s.Image())
}

func TestEndToEnd_ExtendedFlow(t *testing.T) {
	var body map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(sampleResult())
	}))
	defer ts.Close()

	client := analysis.NewClient(analysis.ClientOpts{URL: ts.URL, RequireCondition: true, Now: fixedNow})
	s, n := newTestSession(client)

	require.NoError(t, s.SelectRegion("baghdad"))
	require.NoError(t, s.SetCondition(analysis.DeclaredNew))
	require.NoError(t, s.SetPurchaseYear(2023))
	img, err := s.LoadImage(context.Background(), pngImage(t, 3000, 1500))
	require.NoError(t, err)
	assert.Equal(t, 1024, img.Width)
	assert.Equal(t, 512, img.Height)

	result, err := s.Submit(context.Background())
	require.NoError(t, err)
	assert.Empty(t, n.All())

	assert.Equal(t, "Baghdad", body["governorate"])
	assert.Equal(t, "جديد", body["itemCondition"])
	assert.Equal(t, float64(2023), body["purchaseYear"])

	sent, _, err := imageprep.DecodeDataURI(body["imageBase64"].(string))
	require.NoError(t, err)
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(sent))
	require.NoError(t, err)
	assert.Equal(t, 1024, cfg.Width)
	assert.InDelta(t, 512, cfg.Height, 1)

	assert.Equal(t, Results, s.Screen())
	assert.Equal(t, int64(830000), result.SuggestedPrice)
	require.Equal(t, 1, s.History().Len())
	latest, _ := s.History().Latest()
	assert.Equal(t, int64(830000), latest.Result.SuggestedPrice)
}

func TestEndToEnd_NotSellableSentinel(t *testing.T) {
	const message = "هذا العنصر غير قابل للبيع في سوق المستعمل"
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"error": "not_sellable_item", "message": message})
	}))
	defer ts.Close()

	client := analysis.NewClient(analysis.ClientOpts{URL: ts.URL, RequireCondition: true, Now: fixedNow})
	s, n := newTestSession(client)
	require.NoError(t, s.SelectRegion("baghdad"))
	require.NoError(t, s.SetCondition(analysis.DeclaredWorn))
	_, err := s.LoadImage(context.Background(), pngImage(t, 200, 100))
	require.NoError(t, err)

	_, err = s.Submit(context.Background())
	require.Error(t, err)
	assert.True(t, analysis.IsCode(err, analysis.CodeNotSellable))

	assert.Equal(t, Idle, s.Screen())
	assert.Zero(t, s.History().Len())

	notices := n.All()
	require.Len(t, notices, 1)
	assert.Equal(t, NoticeNotSellable, notices[0].Kind)
	assert.Equal(t, message, notices[0].Message)
}

func TestNotices_FollowLanguage(t *testing.T) {
	sub := &MockSubmitter{
		RequireCondition: true,
		SubmitFunc: func(ctx context.Context, req analysis.Request) (*analysis.Result, error) {
			return nil, &analysis.Error{Code: analysis.CodePaymentRequired, Status: 402}
		},
	}
	n := &recordingNotifier{}
	s := New(Opts{Submitter: sub, Notifier: n, Now: fixedNow, Language: fixedLanguage(i18n.English)})
	require.NoError(t, s.SelectRegion("duhok"))
	require.NoError(t, s.SetCondition(analysis.DeclaredNew))
	_, err := s.LoadImage(context.Background(), pngImage(t, 4, 4))
	require.NoError(t, err)

	_, err = s.Submit(context.Background())
	require.Error(t, err)

	notices := n.All()
	require.Len(t, notices, 1)
	assert.Equal(t, "Error Occurred", notices[0].Title)
	assert.Equal(t, i18n.T(i18n.English, i18n.PaymentRequiredMsg), notices[0].Message)
}

func TestSubmit_NilResultIsMalformed(t *testing.T) {
	sub := &MockSubmitter{
		RequireCondition: true,
		SubmitFunc: func(ctx context.Context, req analysis.Request) (*analysis.Result, error) {
			return nil, nil
		},
	}
	s, n := readySession(t, sub)

	result, err := s.Submit(context.Background())
	assert.Nil(t, result)
	assert.True(t, analysis.IsCode(err, analysis.CodeMalformedResponse))
	assert.Equal(t, Idle, s.Screen())
	assert.Zero(t, s.History().Len())
	require.Len(t, n.All(), 1)
	assert.Equal(t, analysis.CodeMalformedResponse, n.All()[0].Code)
}

func TestSubmit_PanickingSubmitterReturnsToIdle(t *testing.T) {
	sub := &MockSubmitter{
		RequireCondition: true,
		SubmitFunc: func(ctx context.Context, req analysis.Request) (*analysis.Result, error) {
			panic("boom")
		},
	}
	s, _ := readySession(t, sub)

	result, err := s.Submit(context.Background())
	assert.Nil(t, result)
	assert.True(t, analysis.IsCode(err, analysis.CodeUnexpected))
	assert.Equal(t, Idle, s.Screen())
	assert.EqualValues(t, "basra", s.Region())
	assert.NotNil(t, s.Image())

	sub.SubmitFunc = nil
	_, err = s.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Results, s.Screen())
}
