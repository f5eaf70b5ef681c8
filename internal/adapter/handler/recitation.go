package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/itqanlabs/itqan-backend/errors"
	"github.com/itqanlabs/itqan-backend/internal/adapter/dto"
	"github.com/itqanlabs/itqan-backend/internal/usecase/analysis"
)

// Recitation handles audio upload, submission, and analysis job reads
type Recitation struct {
	svc    *analysis.Service
	logger *zap.Logger
}

// NewRecitation creates a new recitation handler
func NewRecitation(svc *analysis.Service, logger *zap.Logger) *Recitation {
	return &Recitation{svc: svc, logger: logger}
}

// UploadURL issues a presigned PUT URL for the recitation audio
// @Summary      Request audio upload URL
// @Tags         recitations
// @Security     BearerAuth
// @Accept       json
// @Param        request  body  dto.UploadURLRequest  false  "upload options"
// @Success      200  {object}  handler.success{data=dto.UploadURLResponse}
// @Router       /recitations/upload-url [post]
func (h *Recitation) UploadURL(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := RequireUser(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req dto.UploadURLRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	key, url, err := h.svc.RequestUploadURL(ctx, user.ID, req.Extension)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, dto.UploadURLResponse{
		AudioKey:  key,
		UploadURL: url,
	})
}

// Submit queues an uploaded recitation for analysis
// @Summary      Submit a recitation
// @Tags         recitations
// @Security     BearerAuth
// @Accept       json
// @Param        request  body  dto.SubmitRecitationRequest  true  "recitation"
// @Success      202  {object}  handler.success{data=dto.SubmitRecitationResponse}
// @Success      200  {object}  handler.success{data=dto.SubmissionRejectedResponse}  "policy gate refusal"
// @Router       /recitations [post]
func (h *Recitation) Submit(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := RequireUser(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	var req dto.SubmitRecitationRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	out, err := h.svc.Submit(ctx, analysis.SubmitInput{
		UserID:          user.ID,
		AssignmentID:    req.AssignmentID,
		SurahNumber:     req.SurahNumber,
		AyahStart:       req.AyahStart,
		AyahEnd:         req.AyahEnd,
		TargetText:      req.TargetText,
		AudioKey:        req.AudioKey,
		DurationSeconds: req.DurationSeconds,
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	// A gate refusal is a successful request that did not queue a job.
	if out.Rejection != nil {
		return HandleSuccess(h.logger, c, dto.SubmissionRejectedResponse{
			Allowed: false,
			Reason:  out.Rejection.Reason,
			Message: out.Rejection.Message,
		})
	}

	return HandleAccepted(h.logger, c, dto.SubmitRecitationResponse{
		RecitationID: out.Recitation.ID,
		JobID:        out.Job.ID,
		Status:       string(out.Job.Status),
	})
}

// GetJob returns an analysis job, including its result once done
// @Summary      Get analysis job
// @Tags         recitations
// @Security     BearerAuth
// @Param        id  path  string  true  "job ID"
// @Success      200  {object}  handler.success
// @Router       /analysis/jobs/{id} [get]
func (h *Recitation) GetJob(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := RequireUser(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument("invalid job id"))
	}

	job, err := h.svc.GetJob(ctx, jobID, user)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, job)
}

// StreamProgress streams live job progress events over SSE. Events are
// relayed from the Redis progress channel until the client disconnects.
// @Summary      Stream analysis progress
// @Tags         recitations
// @Security     BearerAuth
// @Param        id  path  string  true  "job ID"
// @Produce      text/event-stream
// @Router       /analysis/jobs/{id}/events [get]
func (h *Recitation) StreamProgress(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := RequireUser(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument("invalid job id"))
	}

	// Ownership check before subscribing.
	job, err := h.svc.GetJob(ctx, jobID, user)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.WriteHeader(http.StatusOK)

	// Terminal jobs get a single snapshot event; there is nothing to
	// stream anymore.
	if job.Status.IsTerminal() {
		fmt.Fprintf(res, "event: status\ndata: {\"job_id\":%q,\"status\":%q}\n\n", job.ID, job.Status)
		res.Flush()
		return nil
	}

	sub := h.svc.Progress().Subscribe(ctx, jobID)
	defer sub.Close()

	keepalive := time.NewTicker(15 * time.Second)
	defer keepalive.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-keepalive.C:
			fmt.Fprint(res, ": keepalive\n\n")
			res.Flush()
		case msg, ok := <-sub.Channel():
			if !ok {
				return nil
			}
			fmt.Fprintf(res, "event: progress\ndata: %s\n\n", msg.Payload)
			res.Flush()
		}
	}
}

// History lists analysis jobs, newest first. Students get their own
// jobs; teachers and admins get the whole organization's.
// @Summary      List analysis history
// @Tags         recitations
// @Security     BearerAuth
// @Param        limit   query  int  false  "page size"
// @Param        offset  query  int  false  "page offset"
// @Success      200  {object}  handler.success
// @Router       /analysis/history [get]
func (h *Recitation) History(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := RequireUser(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	limit := queryInt(c, "limit", 20)
	offset := queryInt(c, "offset", 0)

	jobs, err := h.svc.ListHistory(ctx, user, limit, offset)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, map[string]interface{}{
		"jobs":   jobs,
		"limit":  limit,
		"offset": offset,
	})
}

// Reprocess requeues a failed job
// @Summary      Requeue a failed analysis job
// @Tags         recitations
// @Security     BearerAuth
// @Param        id  path  string  true  "job ID"
// @Success      202  {object}  handler.success
// @Router       /analysis/jobs/{id}/reprocess [post]
func (h *Recitation) Reprocess(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := RequireUser(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument("invalid job id"))
	}

	job, err := h.svc.Reprocess(ctx, jobID, user)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleAccepted(h.logger, c, map[string]interface{}{
		"job_id": job.ID,
		"status": job.Status,
	})
}

// AudioURL issues a short-lived download URL for a recitation's audio
// @Summary      Get recitation audio URL
// @Tags         recitations
// @Security     BearerAuth
// @Param        id  path  string  true  "recitation ID"
// @Success      200  {object}  handler.success
// @Router       /recitations/{id}/audio-url [get]
func (h *Recitation) AudioURL(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := RequireUser(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	recitationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrInvalidArgument("invalid recitation id"))
	}

	url, err := h.svc.AudioURL(ctx, recitationID, user)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, map[string]string{"audio_url": url})
}

// queryInt reads an integer query parameter with a fallback
func queryInt(c echo.Context, name string, fallback int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
