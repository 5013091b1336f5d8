package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"Springboard/internal/metrics"
	"Springboard/internal/model"
	"Springboard/internal/projector"
	"Springboard/internal/strategy"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (s *Server) parseDay(raw string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", raw, s.engine.Grid.Loc)
}

// maxEvaluateBody caps the JSON body of an evaluation request.
const maxEvaluateBody = 8 << 20

func (s *Server) handleEvaluate(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxEvaluateBody)
	var req evaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	day, err := s.parseDay(req.Day)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, "day must be YYYY-MM-DD")
		return
	}

	in := strategy.Input{Day: day, Manual: req.Anchors, Labels: req.Labels}
	for _, series := range []struct {
		name string
		raw  []wireBar
		dst  *[]model.Bar
	}{
		{"prior session", req.Prior, &in.Prior},
		{"overnight", req.Overnight, &in.Overnight},
		{"session", req.Session, &in.Session},
	} {
		bars, err := toBars(series.name, series.raw)
		if err != nil {
			metrics.ObserveFailure("api", err)
			s.engineError(c, err)
			return
		}
		*series.dst = bars
	}

	start := time.Now()
	ev, err := strategy.Run(in, s.engine)
	if err != nil {
		metrics.ObserveFailure("api", err)
		s.engineError(c, err)
		return
	}
	metrics.ObserveEvaluation("api", ev, time.Since(start))
	successResponse(c, ev)
}

func (s *Server) handleLineThrough(c *gin.Context) {
	var req lineThroughRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	if req.Label == "" {
		req.Label = "L1"
	}
	line, err := projector.LineThrough(s.engine.Grid, req.Label, req.T1, req.P1, req.T2, req.P2)
	if err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	resp := model.LineResult{Line: line}
	if req.Day != "" {
		day, err := s.parseDay(req.Day)
		if err != nil {
			errorResponse(c, http.StatusBadRequest, "day must be YYYY-MM-DD")
			return
		}
		resp.Projection = projector.Project(s.engine.Grid, line, day)
	}
	successResponse(c, resp)
}

func (s *Server) handleLatest(c *gin.Context) {
	if s.runner == nil {
		errorResponse(c, http.StatusServiceUnavailable, "no data source configured")
		return
	}
	ev := s.runner.Last()
	if ev == nil {
		errorResponse(c, http.StatusNotFound, "no evaluation yet")
		return
	}
	successResponse(c, ev)
}

func (s *Server) handleRun(c *gin.Context) {
	if s.runner == nil {
		errorResponse(c, http.StatusServiceUnavailable, "no data source configured")
		return
	}
	day := time.Now().In(s.engine.Grid.Loc)
	day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, s.engine.Grid.Loc)
	if raw := c.Query("day"); raw != "" {
		d, err := s.parseDay(raw)
		if err != nil {
			errorResponse(c, http.StatusBadRequest, "day must be YYYY-MM-DD")
			return
		}
		day = d
	}
	ev, err := s.runner.Evaluate("api", day)
	if err != nil {
		if metrics.ErrorKind(err) != "" {
			s.engineError(c, err)
			return
		}
		// collector or store failure
		s.logger.Error().Err(err).Time("day", day).Msg("run failed")
		errorResponse(c, http.StatusServiceUnavailable, err.Error())
		return
	}
	successResponse(c, ev)
}

// engineError maps rejected input to 422 with the offending bar, and
// anything else to 400.
func (s *Server) engineError(c *gin.Context, err error) {
	var (
		schemaErr  *model.SchemaError
		orderErr   *model.TimeOrderError
		cadenceErr *model.CadenceError
	)
	detail := gin.H{"error": true, "message": err.Error(), "kind": metrics.ErrorKind(err)}
	switch {
	case errors.As(err, &schemaErr):
		detail["index"], detail["field"] = schemaErr.Index, schemaErr.Field
		if !schemaErr.Time.IsZero() {
			detail["time"] = schemaErr.Time
		}
	case errors.As(err, &orderErr):
		detail["index"], detail["time"] = orderErr.Index, orderErr.Time
	case errors.As(err, &cadenceErr):
		detail["index"], detail["time"] = cadenceErr.Index, cadenceErr.Time
	default:
		s.logger.Warn().Err(err).Msg("evaluation rejected")
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	c.JSON(http.StatusUnprocessableEntity, detail)
}
