package screening

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clinic/clinic/internal/assessment"
	"github.com/clinic/clinic/internal/platform/auth"
)

type Handler struct {
	registry  *assessment.Registry
	presenter *assessment.Presenter
	sessions  SessionStore
	archive   Archive
	logger    zerolog.Logger
	now       func() time.Time
	newID     func() string
}

// NewHandler wires the screening routes. A nil archive disables archiving.
func NewHandler(registry *assessment.Registry, presenter *assessment.Presenter, sessions SessionStore, archive Archive, logger zerolog.Logger) *Handler {
	if archive == nil {
		archive = NoopArchive()
	}
	return &Handler{
		registry:  registry,
		presenter: presenter,
		sessions:  sessions,
		archive:   archive,
		logger:    logger,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/assessments", h.ListAssessments)
	api.GET("/assessments/:id", h.GetAssessment)
	api.POST("/assessments/:id/evaluate", h.Evaluate)
	api.POST("/assessments/:id/sessions", h.CreateSession)

	api.GET("/sessions/:sid", h.GetSession)
	api.PUT("/sessions/:sid/answer", h.AnswerSession)
	api.POST("/sessions/:sid/advance", h.AdvanceSession)
	api.POST("/sessions/:sid/back", h.BackSession)
	api.POST("/sessions/:sid/results", h.ShowResults)
	api.POST("/sessions/:sid/restart", h.RestartSession)
	api.DELETE("/sessions/:sid", h.DeleteSession)
}

type assessmentSummary struct {
	ID            string                `json:"id"`
	Title         string                `json:"title"`
	Kind          assessment.ResultKind `json:"kind"`
	QuestionCount int                   `json:"question_count"`
}

type assessmentDefinition struct {
	ID        string                `json:"id"`
	Title     string                `json:"title"`
	Kind      assessment.ResultKind `json:"kind"`
	Questions []assessment.Question `json:"questions"`
}

func (h *Handler) ListAssessments(c echo.Context) error {
	list := h.registry.List()
	out := make([]assessmentSummary, 0, len(list))
	for _, a := range list {
		out = append(out, assessmentSummary{
			ID:            a.ID(),
			Title:         a.Title(),
			Kind:          a.Kind(),
			QuestionCount: a.Bank().Len(),
		})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"assessments": out})
}

func (h *Handler) lookup(c echo.Context) (assessment.Assessment, error) {
	a, ok := h.registry.Get(c.Param("id"))
	if !ok {
		return nil, echo.NewHTTPError(http.StatusNotFound, "assessment not found")
	}
	return a, nil
}

func (h *Handler) GetAssessment(c echo.Context) error {
	a, err := h.lookup(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, assessmentDefinition{
		ID:        a.ID(),
		Title:     a.Title(),
		Kind:      a.Kind(),
		Questions: a.Bank().Questions(),
	})
}

type evaluateRequest struct {
	Answers map[string]interface{} `json:"answers"`
}

type evaluateResponse struct {
	Result       assessment.Result       `json:"result"`
	Presentation assessment.Presentation `json:"presentation"`
}

// Evaluate scores a complete answer set in one request.
func (h *Handler) Evaluate(c echo.Context) error {
	a, err := h.lookup(c)
	if err != nil {
		return err
	}
	var req evaluateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	collector := assessment.NewCollector(a.Bank())
	if err := collector.SetAll(req.Answers); err != nil {
		return answerError(err)
	}
	if !collector.IsComplete() {
		return incomplete(collector.Missing())
	}

	r := a.Evaluate(collector.Responses())
	h.archiveResult(c, "", a.ID(), collector.Responses(), r)
	return c.JSON(http.StatusOK, evaluateResponse{
		Result:       r,
		Presentation: h.presenter.Present(a, r),
	})
}

func incomplete(missing []string) error {
	return echo.NewHTTPError(http.StatusUnprocessableEntity, map[string]interface{}{
		"message": "assessment is incomplete",
		"missing": missing,
	})
}

func answerError(err error) error {
	return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
}

func (h *Handler) archiveResult(c echo.Context, sessionID, assessmentID string, answers assessment.ResponseSet, r assessment.Result) {
	_ = h.archive.Archive(c.Request().Context(), Entry{
		SessionID:    sessionID,
		UserID:       auth.UserIDFromContext(c.Request().Context()),
		AssessmentID: assessmentID,
		Answers:      answers,
		Result:       r,
		CompletedAt:  h.now().UTC(),
	})
}

// sessionView is the client's picture of a wizard session.
type sessionView struct {
	ID           string                   `json:"id"`
	AssessmentID string                   `json:"assessment_id"`
	State        assessment.State         `json:"state"`
	Index        int                      `json:"index"`
	Total        int                      `json:"total"`
	Question     *assessment.Question     `json:"question,omitempty"`
	Answers      map[string]interface{}   `json:"answers"`
	Missing      []string                 `json:"missing,omitempty"`
	Result       *assessment.Result       `json:"result,omitempty"`
	Presentation *assessment.Presentation `json:"presentation,omitempty"`
	UpdatedAt    time.Time                `json:"updated_at"`
}

func (h *Handler) view(s *assessment.Session) sessionView {
	a := s.Assessment()
	v := sessionView{
		ID:           s.ID(),
		AssessmentID: a.ID(),
		State:        s.State(),
		Index:        s.Index(),
		Total:        a.Bank().Len(),
		Answers:      make(map[string]interface{}),
		UpdatedAt:    s.UpdatedAt(),
	}
	for id, ans := range s.Responses() {
		v.Answers[id] = ans.Value()
	}
	if q, ok := s.Current(); ok {
		v.Question = &q
	}
	if s.State() == assessment.StateInProgress {
		v.Missing = s.Collector().Missing()
	}
	if r, ok := s.Result(); ok {
		p := h.presenter.Present(a, r)
		v.Result = &r
		v.Presentation = &p
	}
	return v
}

func (h *Handler) CreateSession(c echo.Context) error {
	a, err := h.lookup(c)
	if err != nil {
		return err
	}
	s := assessment.NewSession(h.newID(), a, h.now().UTC())
	owner := auth.UserIDFromContext(c.Request().Context())
	if err := h.sessions.Put(c.Request().Context(), Record{Owner: owner, Snapshot: s.Snapshot()}); err != nil {
		return storeError(err)
	}
	return c.JSON(http.StatusCreated, h.view(s))
}

// load restores the session named in the path. Sessions owned by another
// user are reported as missing.
func (h *Handler) load(c echo.Context) (*assessment.Session, string, error) {
	sid := c.Param("sid")
	if _, err := uuid.Parse(sid); err != nil {
		return nil, "", echo.NewHTTPError(http.StatusNotFound, "session not found")
	}
	rec, err := h.sessions.Get(c.Request().Context(), sid)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, "", echo.NewHTTPError(http.StatusNotFound, "session not found")
		}
		return nil, "", storeError(err)
	}
	if rec.Owner != "" && rec.Owner != auth.UserIDFromContext(c.Request().Context()) {
		return nil, "", echo.NewHTTPError(http.StatusNotFound, "session not found")
	}
	a, ok := h.registry.Get(rec.Snapshot.AssessmentID)
	if !ok {
		return nil, "", echo.NewHTTPError(http.StatusGone, "assessment no longer offered")
	}
	s, err := assessment.RestoreSession(rec.Snapshot, a)
	if err != nil {
		h.logger.Warn().Err(err).Str("session_id", sid).Msg("discarding unrestorable session")
		_ = h.sessions.Delete(c.Request().Context(), sid)
		return nil, "", echo.NewHTTPError(http.StatusGone, "session can no longer be resumed")
	}
	return s, rec.Owner, nil
}

func (h *Handler) save(c echo.Context, s *assessment.Session, owner string) error {
	s.Touch(h.now().UTC())
	if err := h.sessions.Put(c.Request().Context(), Record{Owner: owner, Snapshot: s.Snapshot()}); err != nil {
		return storeError(err)
	}
	return nil
}

func storeError(err error) error {
	return echo.NewHTTPError(http.StatusServiceUnavailable, "session store unavailable").SetInternal(err)
}

func transitionError(err error) error {
	switch {
	case errors.Is(err, assessment.ErrNotAnswered):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, assessment.ErrUnknownQuestion), errors.Is(err, assessment.ErrInvalidAnswer):
		return answerError(err)
	case errors.Is(err, assessment.ErrAtStart),
		errors.Is(err, assessment.ErrWrongState),
		errors.Is(err, assessment.ErrNotReady):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "session transition failed").SetInternal(err)
	}
}

// step loads a session, applies fn and saves it. A failing fn leaves the
// stored session untouched unless it moved the session to another question.
func (h *Handler) step(c echo.Context, fn func(s *assessment.Session) error) error {
	s, owner, err := h.load(c)
	if err != nil {
		return err
	}
	index := s.Index()
	if err := fn(s); err != nil {
		if s.Index() != index {
			if serr := h.save(c, s, owner); serr != nil {
				return serr
			}
		}
		return err
	}
	if err := h.save(c, s, owner); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.view(s))
}

func (h *Handler) GetSession(c echo.Context) error {
	s, _, err := h.load(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.view(s))
}

type answerRequest struct {
	// QuestionID, when set, must name the current question.
	QuestionID string      `json:"question_id"`
	Value      interface{} `json:"value"`
}

func (h *Handler) AnswerSession(c echo.Context) error {
	var req answerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Value == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "value is required")
	}
	return h.step(c, func(s *assessment.Session) error {
		if q, ok := s.Current(); ok && req.QuestionID != "" && req.QuestionID != q.ID {
			return echo.NewHTTPError(http.StatusConflict, "question "+req.QuestionID+" is not the current question")
		}
		if err := s.Answer(req.Value); err != nil {
			return transitionError(err)
		}
		return nil
	})
}

func (h *Handler) AdvanceSession(c echo.Context) error {
	return h.step(c, func(s *assessment.Session) error {
		if err := s.Advance(); err != nil {
			return transitionError(err)
		}
		return nil
	})
}

func (h *Handler) BackSession(c echo.Context) error {
	return h.step(c, func(s *assessment.Session) error {
		if err := s.Back(); err != nil {
			return transitionError(err)
		}
		return nil
	})
}

// ShowResults scores the session. The result is archived only once the
// session has been saved.
func (h *Handler) ShowResults(c echo.Context) error {
	s, owner, err := h.load(c)
	if err != nil {
		return err
	}
	r, err := s.ShowResults()
	if err != nil {
		return transitionError(err)
	}
	if err := h.save(c, s, owner); err != nil {
		return err
	}
	h.archiveResult(c, s.ID(), s.Assessment().ID(), s.Responses(), r)
	return c.JSON(http.StatusOK, h.view(s))
}

func (h *Handler) RestartSession(c echo.Context) error {
	return h.step(c, func(s *assessment.Session) error {
		s.Restart()
		return nil
	})
}

func (h *Handler) DeleteSession(c echo.Context) error {
	s, _, err := h.load(c)
	if err != nil {
		return err
	}
	if err := h.sessions.Delete(c.Request().Context(), s.ID()); err != nil {
		return storeError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
