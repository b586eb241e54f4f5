package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"

	"github.com/edgard/intillasense/internal/advisor"
	"github.com/edgard/intillasense/internal/logger"
	"github.com/edgard/intillasense/internal/recommend"
)

const healthTimeout = 2 * time.Second

// chatForm is a chat request carried in a query string or form body.
// ChatHistory is a JSON array when present.
type chatForm struct {
	FarmNum     int    `form:"farmNum"`
	Text        string `form:"text"`
	Voice       string `form:"voice"`
	Image       string `form:"image,default=NO_IMAGE"`
	Mode        string `form:"mode"`
	ChatHistory string `form:"chat_history"`
}

func (f chatForm) request() (recommend.ChatRequest, error) {
	req := recommend.ChatRequest{
		FarmNum: f.FarmNum,
		Text:    f.Text,
		Voice:   f.Voice,
		Image:   f.Image,
		Mode:    f.Mode,
	}
	if f.ChatHistory != "" {
		if err := json.Unmarshal([]byte(f.ChatHistory), &req.ChatHistory); err != nil {
			return req, fmt.Errorf("chat_history must be a JSON array: %w", err)
		}
	}
	return req, nil
}

func (s *Server) handleTime(c *gin.Context) {
	now := s.clock.Now()
	c.JSON(http.StatusOK, gin.H{"time": float64(now.UnixNano()) / float64(time.Second)})
}

func (s *Server) handleChatQuery(c *gin.Context) {
	var form chatForm
	if err := c.ShouldBindQuery(&form); err != nil {
		s.badRequest(c, err)
		return
	}
	req, err := form.request()
	if err != nil {
		s.badRequest(c, err)
		return
	}
	s.answer(c, req)
}

func (s *Server) handleChatBody(c *gin.Context) {
	var (
		req recommend.ChatRequest
		err error
	)
	switch c.ContentType() {
	case binding.MIMEPOSTForm, binding.MIMEMultipartPOSTForm:
		req, err = s.bindForm(c)
	default:
		err = c.ShouldBindJSON(&req)
		if req.Image == "" {
			req.Image = advisor.NoImage
		}
	}
	if err != nil {
		s.badRequest(c, err)
		return
	}
	s.answer(c, req)
}

// bindForm reads a form post. The image may be an uploaded file or a
// base64 field.
func (s *Server) bindForm(c *gin.Context) (recommend.ChatRequest, error) {
	// binding.Form reads value parts only; file parts are handled below.
	var form chatForm
	if err := c.ShouldBindWith(&form, binding.Form); err != nil {
		return recommend.ChatRequest{}, err
	}
	req, err := form.request()
	if err != nil {
		return req, err
	}

	fh, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return req, nil
	}
	if err != nil {
		return req, fmt.Errorf("read image upload: %w", err)
	}
	f, err := fh.Open()
	if err != nil {
		return req, fmt.Errorf("open image upload: %w", err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return req, fmt.Errorf("read image upload: %w", err)
	}
	req.Image = base64.StdEncoding.EncodeToString(data)
	return req, nil
}

// answer runs req through the service and writes the reply in the
// requested mode.
func (s *Server) answer(c *gin.Context, req recommend.ChatRequest) {
	req.Channel = recommend.ChannelHTTP
	req.RequestID = c.GetString(logger.RequestIDKey)

	res, err := s.service.Handle(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, recommend.ErrInvalidRequest) {
			s.badRequest(c, err)
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	if res.Reply.Mode == advisor.ModeText {
		c.String(http.StatusOK, res.Reply.Text)
		return
	}
	c.JSON(http.StatusOK, res.Reply.Recommendation)
}

func (s *Server) badRequest(c *gin.Context, err error) {
	_ = c.Error(err)
	status := http.StatusBadRequest
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		status = http.StatusRequestEntityTooLarge
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func (s *Server) handleFarms(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"farms": s.service.Catalog().Profiles()})
}

func (s *Server) handleHealth(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "disabled"})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()
	if err := s.store.Ping(ctx); err != nil {
		s.log.Warn("Health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
