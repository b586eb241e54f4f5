package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/edgard/intillasense/internal/recommend"
)

// DefaultFileBaseURL is where Telegram serves downloadable files.
const DefaultFileBaseURL = "https://api.telegram.org"

// HandlerDeps provides dependencies for the Telegram handlers.
type HandlerDeps struct {
	Logger  *zap.Logger
	Service *recommend.Service
	Token   string

	// FileBaseURL and HTTPClient are used to download photos. Zero values
	// mean DefaultFileBaseURL and http.DefaultClient.
	FileBaseURL string
	HTTPClient  *http.Client
}

func (d HandlerDeps) logger() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}
