package handlers_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/edgard/intillasense/internal/advisor"
	"github.com/edgard/intillasense/internal/config"
	"github.com/edgard/intillasense/internal/farm"
	"github.com/edgard/intillasense/internal/recommend"
	"github.com/edgard/intillasense/internal/telegram/handlers"
)

func TestMain(m *testing.M) {
	// genai pulls in opencensus, which starts its stats worker in init.
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

const testToken = "123456:test-token"

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01")

func TestParseAdviseCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in       string
		farm     int
		question string
		wantErr  bool
	}{
		{in: "/advise 1 Should I chisel plow?", farm: 1, question: "Should I chisel plow?"},
		{in: "/advise@IntillaBot 2   when to till  ", farm: 2, question: "when to till"},
		{in: "/advise 2", farm: 2, question: ""},
		{in: "  /advise\t3\nmulti\nline", farm: 3, question: "multi\nline"},
		{in: "/advise", wantErr: true},
		{in: "/advise one thing", wantErr: true},
		{in: "/help 1 hi", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		farmNum, question, err := handlers.ParseAdviseCommand(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, handlers.ErrBadCommand, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.farm, farmNum, tt.in)
		assert.Equal(t, tt.question, question, tt.in)
	}
}

func TestLargestPhoto(t *testing.T) {
	t.Parallel()

	_, ok := handlers.LargestPhoto(nil)
	assert.False(t, ok)

	best, ok := handlers.LargestPhoto([]models.PhotoSize{
		{FileID: "small", Width: 90, Height: 90},
		{FileID: "large", Width: 1280, Height: 960},
		{FileID: "medium", Width: 320, Height: 240},
	})
	require.True(t, ok)
	assert.Equal(t, "large", best.FileID)
}

func sampleReply() *advisor.Reply {
	return &advisor.Reply{
		Mode: advisor.ModeStructured,
		Recommendation: &advisor.TillageRecommendation{
			ResponseToUser: "Strip till this fall.",
			Benefits:       []string{"Less erosion", "Warmer seedbed"},
			Factors:        advisor.Factors{SoilType: "silty clay loam", RainfallTrend: "increasing", PreviousCrop: "soybeans"},
			PrimaryOption:  advisor.EquipmentChoice{Method: "Strip till", Equipment: "Co-op strip till bar", Owner: "CO-OP HIRED", CostPerAcre: 55, TotalCost: 803},
			AlternativeOptions: []advisor.EquipmentChoice{
				{Method: "Chisel plow", Equipment: "John Deere 2730", Owner: "FARMER", CostPerAcre: 18, TotalCost: 262.8},
				{Method: "No-till", Equipment: "None", Owner: "FARMER"},
			},
			Explanation:         "Residue from soybeans is light.",
			OptimalTillageDates: advisor.TillageWindow{StartDate: "2025-10-20", EndDate: "2025-11-10", Rationale: "Soil should be dry enough."},
		},
	}
}

func TestRenderReply(t *testing.T) {
	t.Parallel()

	got := handlers.RenderReply(sampleReply())
	for _, want := range []string{
		"Strip till this fall.",
		"Recommended: Strip till with Co-op strip till bar (CO-OP HIRED), $55.00/acre, $803.00 total",
		"- Chisel plow with John Deere 2730 (FARMER), $18.00/acre, $262.80 total",
		"When: 2025-10-20 to 2025-11-10. Soil should be dry enough.",
		"Factors: soil silty clay loam, rainfall increasing, previous crop soybeans",
		"- Warmer seedbed",
		"Residue from soybeans is light.",
	} {
		assert.Contains(t, got, want)
	}
	assert.True(t, strings.HasPrefix(got, "Strip till this fall."))

	text := handlers.RenderReply(&advisor.Reply{Mode: advisor.ModeText, Text: "Plain answer."})
	assert.Equal(t, "Plain answer.", text)

	long := handlers.RenderReply(&advisor.Reply{Mode: advisor.ModeText, Text: strings.Repeat("é", 5000)})
	assert.Len(t, []rune(long), 4096)
	assert.True(t, strings.HasSuffix(long, "..."))

	assert.NotEmpty(t, handlers.RenderReply(nil))
}

func TestRenderFarms(t *testing.T) {
	t.Parallel()

	catalog, err := farm.DefaultCatalog()
	require.NoError(t, err)

	got := handlers.RenderFarms(catalog.Profiles())
	assert.True(t, strings.HasPrefix(got, "1. "))
	assert.Contains(t, got, "\n2. ")
	assert.Contains(t, got, "14.6 acres")
	assert.Contains(t, got, "$55.00/acre ($803.00 total)")

	assert.Equal(t, "No farm profiles are configured.", handlers.RenderFarms(nil))
}

// fakeTelegram stands in for the Bot API and its file server.
type fakeTelegram struct {
	mu    sync.Mutex
	sent  []string
	paths []string
}

func (f *fakeTelegram) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.paths = append(f.paths, r.URL.Path)
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/bot" + testToken + "/getFile":
		fmt.Fprint(w, `{"ok":true,"result":{"file_id":"big","file_unique_id":"u","file_size":21,"file_path":"photos/file_7.png"}}`)
	case "/file/bot" + testToken + "/photos/file_7.png":
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(pngBytes)
	case "/bot" + testToken + "/sendChatAction":
		fmt.Fprint(w, `{"ok":true,"result":true}`)
	case "/bot" + testToken + "/sendMessage":
		f.mu.Lock()
		f.sent = append(f.sent, r.FormValue("text"))
		f.mu.Unlock()
		fmt.Fprint(w, `{"ok":true,"result":{"message_id":99,"date":0,"chat":{"id":42,"type":"private"}}}`)
	default:
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"ok":false,"error_code":404,"description":"Not Found"}`)
	}
}

func (f *fakeTelegram) messages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

type fakeClient struct {
	mu   sync.Mutex
	reqs []advisor.Request
	err  error
}

func (f *fakeClient) Complete(_ context.Context, req advisor.Request) (*advisor.Reply, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return nil, f.err
	}
	return sampleReply(), nil
}

type harness struct {
	bot    *bot.Bot
	deps   handlers.HandlerDeps
	tg     *fakeTelegram
	client *fakeClient
}

func newHarness(t *testing.T) harness {
	t.Helper()
	log := zaptest.NewLogger(t)

	tg := &fakeTelegram{}
	ts := httptest.NewServer(tg)
	t.Cleanup(ts.Close)

	b, err := bot.New(testToken, bot.WithServerURL(ts.URL), bot.WithSkipGetMe())
	require.NoError(t, err)

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "data/illinois_soil_weather.txt", []byte("wet"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "data/north_dakota_soil_weather.txt", []byte("dry"), 0o644))
	catalog, err := farm.DefaultCatalog()
	require.NoError(t, err)

	client := &fakeClient{}
	svc := recommend.NewService(recommend.Deps{
		Logger:    log,
		Config:    config.AIConfig{Provider: "gemini", ResponseMode: "structured"},
		Assembler: farm.NewAssembler(catalog, fs, "data", log),
		Client:    client,
	})

	return harness{
		bot:    b,
		tg:     tg,
		client: client,
		deps: handlers.HandlerDeps{
			Logger:      log,
			Service:     svc,
			Token:       testToken,
			FileBaseURL: ts.URL,
			HTTPClient:  ts.Client(),
		},
	}
}

func message(text string) *models.Update {
	return &models.Update{ID: 1, Message: &models.Message{ID: 7, Text: text, Chat: models.Chat{ID: 42}}}
}

func TestAdviseHandlerText(t *testing.T) {
	h := newHarness(t)

	handlers.NewAdviseHandler(h.deps)(context.Background(), h.bot, message("/advise 1 Should I chisel?"))

	require.Len(t, h.client.reqs, 1)
	assert.Equal(t, "Should I chisel?", h.client.reqs[0].Text)
	assert.Equal(t, farm.Illinois, h.client.reqs[0].Farm.FarmID)
	assert.Nil(t, h.client.reqs[0].Image)

	sent := h.tg.messages()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0], "Recommended: Strip till")
}

func TestAdviseHandlerPhotoCaption(t *testing.T) {
	h := newHarness(t)

	update := &models.Update{ID: 2, Message: &models.Message{
		ID:      8,
		Caption: "/advise 2",
		Chat:    models.Chat{ID: 42},
		Photo: []models.PhotoSize{
			{FileID: "small", Width: 90, Height: 90},
			{FileID: "big", Width: 1280, Height: 960},
		},
	}}
	handlers.NewAdviseHandler(h.deps)(context.Background(), h.bot, update)

	require.Len(t, h.client.reqs, 1)
	req := h.client.reqs[0]
	require.NotNil(t, req.Image)
	assert.Equal(t, pngBytes, req.Image.Data)
	assert.Equal(t, "image/png", req.Image.MIMEType)
	assert.Equal(t, farm.NorthDakota, req.Farm.FarmID)
	assert.Len(t, h.tg.messages(), 1)
}

func TestAdviseHandlerErrors(t *testing.T) {
	tests := map[string]struct {
		text      string
		clientErr error
		want      string
	}{
		"usage":          {text: "/advise", want: "Usage: /advise"},
		"empty question": {text: "/advise 1", want: "I can't answer that"},
		"upstream":       {text: "/advise 1 hi", clientErr: errors.New("boom"), want: "Sorry, I couldn't get a recommendation"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			h := newHarness(t)
			h.client.err = tt.clientErr

			handlers.NewAdviseHandler(h.deps)(context.Background(), h.bot, message(tt.text))

			sent := h.tg.messages()
			require.Len(t, sent, 1)
			assert.Contains(t, sent[0], tt.want)
			assert.NotContains(t, sent[0], "boom")
		})
	}
}

func TestStaticHandlers(t *testing.T) {
	h := newHarness(t)

	handlers.NewStartHandler(h.deps)(context.Background(), h.bot, message("/start"))
	handlers.NewHelpHandler(h.deps)(context.Background(), h.bot, message("/help"))
	handlers.NewFarmsHandler(h.deps)(context.Background(), h.bot, message("/farms"))

	sent := h.tg.messages()
	require.Len(t, sent, 3)
	assert.Contains(t, sent[0], "Welcome to IntillaSense")
	assert.Contains(t, sent[1], "/advise <farm number> <question>")
	assert.Contains(t, sent[2], "1. ")
}

func TestRegisterAllCommands(t *testing.T) {
	got := handlers.RegisterAllCommands(handlers.HandlerDeps{})

	for _, name := range []string{"/start", "/help", "/farms", "/advise", "/advise (photo)"} {
		require.Contains(t, got, name)
		assert.NotNil(t, got[name].Handler, name)
	}
	assert.Equal(t, bot.HandlerTypePhotoCaption, got["/advise (photo)"].HandlerType)
}
