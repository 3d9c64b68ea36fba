package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/shareme/internal/common"
	"github.com/dmitrijs2005/shareme/internal/logging"
	"github.com/dmitrijs2005/shareme/internal/server/mail"
	"github.com/dmitrijs2005/shareme/internal/server/repositories/files"
)

const (
	shareSubject = "A file has been shared with you"
	shareSuccess = "Email sent"
)

// ShareRequest asks for file ID to be announced to EmailTo on behalf of
// EmailFrom.
type ShareRequest struct {
	ID        string `json:"id"`
	EmailFrom string `json:"emailFrom"`
	EmailTo   string `json:"emailTo"`
}

type ShareResult struct {
	Message string `json:"message"`
}

// ShareService emails download links and records who shared with whom.
type ShareService struct {
	repo       files.Repository
	dispatcher mail.Dispatcher
	renderer   mail.Renderer
	clientBase string
	logger     logging.Logger
}

func NewShareService(repo files.Repository, dispatcher mail.Dispatcher, renderer mail.Renderer, clientBase string, logger logging.Logger) *ShareService {
	return &ShareService{
		repo:       repo,
		dispatcher: dispatcher,
		renderer:   renderer,
		clientBase: clientBase,
		logger:     logger.With("module", "share"),
	}
}

// ShareByEmail sends the download link of req.ID to req.EmailTo and, once
// the transport accepted the message, stores sender and receiver on the
// record.
//
// The record is only written after the transport answered. A failure to
// write it at that point is logged and not reported: the email is already
// out.
func (s *ShareService) ShareByEmail(ctx context.Context, req ShareRequest) (*ShareResult, error) {
	if req.ID == "" || req.EmailFrom == "" || req.EmailTo == "" {
		sharesTotal.WithLabelValues("invalid").Inc()
		return nil, common.ErrorMissingFields
	}

	file, err := s.repo.FindByID(ctx, req.ID)
	if errors.Is(err, common.ErrorNotFound) {
		sharesTotal.WithLabelValues("not_found").Inc()
		return nil, err
	}
	if err != nil {
		sharesTotal.WithLabelValues("db_error").Inc()
		s.logger.Error(ctx, "metadata lookup failed", "id", req.ID, "error", err)
		return nil, fmt.Errorf("find file: %w", err)
	}

	link := DownloadPageLink(s.clientBase, file.ID)
	html, err := s.renderer.Render(mail.ShareTemplateData{
		From:             req.EmailFrom,
		DownloadPageLink: link,
		Filename:         file.Filename,
		FileSize:         SizeLabel(file.SizeInBytes),
	})
	if err != nil {
		sharesTotal.WithLabelValues("render_error").Inc()
		s.logger.Error(ctx, "render share email failed", "id", req.ID, "error", err)
		return nil, fmt.Errorf("render email: %w", err)
	}

	msg := &mail.Message{
		From:    req.EmailFrom,
		To:      req.EmailTo,
		Subject: shareSubject,
		Text:    fmt.Sprintf("%s shared a file with you", req.EmailFrom),
		HTML:    html,
	}

	if err := <-mail.Dispatch(ctx, s.dispatcher, msg); err != nil {
		sharesTotal.WithLabelValues("transport_error").Inc()
		s.logger.Error(ctx, "mail transport rejected share email", "id", req.ID, "to", req.EmailTo, "error", err)
		return nil, fmt.Errorf("%w: %w", common.ErrorMailTransport, err)
	}

	file.Sender = &req.EmailFrom
	file.Receiver = &req.EmailTo
	if err := s.repo.Save(context.WithoutCancel(ctx), file); err != nil {
		sharesTotal.WithLabelValues("sent_unrecorded").Inc()
		s.logger.Error(ctx, "share email sent but record update failed",
			"id", req.ID, "sender", req.EmailFrom, "receiver", req.EmailTo, "error", err)
		return &ShareResult{Message: shareSuccess}, nil
	}

	sharesTotal.WithLabelValues("success").Inc()
	s.logger.Info(ctx, "file shared", "id", req.ID, "to", req.EmailTo)
	return &ShareResult{Message: shareSuccess}, nil
}
