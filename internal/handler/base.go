package handler

import (
	"reflect"
	"time"

	"github.com/deppfellow/pickboard/internal/middleware"
	"github.com/deppfellow/pickboard/internal/server"
	"github.com/deppfellow/pickboard/internal/validation"
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"
)

// Handler is embedded by every concrete handler to reach the shared
// *server.Server.
type Handler struct {
	server *server.Server
}

func NewHandler(s *server.Server) Handler {
	return Handler{server: s}
}

// HandlerFunc is a typed endpoint. Req is a pointer type such as
// *CreateNoteRequest; it arrives bound and validated.
type HandlerFunc[Req validation.Validatable, Res any] func(c echo.Context, req Req) (Res, error)

// HandlerFuncNoContent is a typed endpoint without a response body.
type HandlerFuncNoContent[Req validation.Validatable] func(c echo.Context, req Req) error

// ResponseHandler writes a successful result.
type ResponseHandler interface {
	Handle(c echo.Context, result interface{}) error
	// GetOperation names the response kind in logs.
	GetOperation() string
	AddAttributes(txn *newrelic.Transaction, result interface{})
}

type JSONResponseHandler struct {
	status int
}

func (h JSONResponseHandler) Handle(c echo.Context, result interface{}) error {
	return c.JSON(h.status, result)
}

func (h JSONResponseHandler) GetOperation() string {
	return "handler"
}

// AddAttributes records the item count of list responses.
func (h JSONResponseHandler) AddAttributes(txn *newrelic.Transaction, result interface{}) {
	if v := reflect.ValueOf(result); v.Kind() == reflect.Slice {
		txn.AddAttribute("response.items", v.Len())
	}
}

type NoContentResponseHandler struct {
	status int
}

func (h NoContentResponseHandler) Handle(c echo.Context, _ interface{}) error {
	return c.NoContent(h.status)
}

func (h NoContentResponseHandler) GetOperation() string {
	return "handler_no_content"
}

func (h NoContentResponseHandler) AddAttributes(*newrelic.Transaction, interface{}) {}

// FileResponseHandler sends the handler's []byte result as an attachment.
type FileResponseHandler struct {
	status      int
	filename    string
	contentType string
}

func (h FileResponseHandler) Handle(c echo.Context, result interface{}) error {
	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename="+h.filename)
	return c.Blob(h.status, h.contentType, result.([]byte))
}

func (h FileResponseHandler) GetOperation() string {
	return "handler_file"
}

func (h FileResponseHandler) AddAttributes(txn *newrelic.Transaction, result interface{}) {
	txn.AddAttribute("file.name", h.filename)
	txn.AddAttribute("file.content_type", h.contentType)
	if data, ok := result.([]byte); ok {
		txn.AddAttribute("file.size_bytes", len(data))
	}
}

// phaseTrace reports the phases of one request to New Relic. A nil txn
// makes every method a no-op.
type phaseTrace struct {
	txn *newrelic.Transaction
}

func (p phaseTrace) phase(name string, err error, d time.Duration) {
	if p.txn == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failed"
		p.txn.NoticeError(nrpkgerrors.Wrap(err))
	}
	p.txn.AddAttribute(name+".status", status)
	p.txn.AddAttribute(name+".duration_ms", d.Milliseconds())
}

func (p phaseTrace) done(total time.Duration, rh ResponseHandler, result interface{}) {
	if p.txn == nil {
		return
	}
	p.txn.AddAttribute("total.duration_ms", total.Milliseconds())
	rh.AddAttributes(p.txn, result)
}

// newRequest returns a zeroed request for one call. Requests are bound in
// place, so a value shared between concurrent calls would race.
func newRequest[Req validation.Validatable]() Req {
	var req Req
	t := reflect.TypeOf((*Req)(nil)).Elem()
	if t.Kind() == reflect.Pointer {
		return reflect.New(t.Elem()).Interface().(Req)
	}
	return req
}

func requestLogger(c echo.Context, rh ResponseHandler) zerolog.Logger {
	ctx := middleware.GetLogger(c).With().
		Str("operation", rh.GetOperation()).
		Str("route", c.Path())
	if f, ok := rh.(FileResponseHandler); ok {
		ctx = ctx.Str("filename", f.filename).Str("content_type", f.contentType)
	}
	return ctx.Logger()
}

// handleRequest binds and validates a fresh Req, runs the endpoint and
// writes its result, logging and tracing each phase.
func handleRequest[Req validation.Validatable](
	c echo.Context,
	run func(c echo.Context, req Req) (interface{}, error),
	rh ResponseHandler,
) error {
	start := time.Now()
	logger := requestLogger(c, rh)

	trace := phaseTrace{txn: newrelic.FromContext(c.Request().Context())}
	if trace.txn != nil {
		trace.txn.AddAttribute("handler.name", c.Path())
	}

	req := newRequest[Req]()

	err := validation.BindAndValidate(c, req)
	validated := time.Since(start)
	trace.phase("validation", err, validated)
	if err != nil {
		logger.Warn().Err(err).Dur("validation_duration", validated).Msg("request validation failed")
		return err
	}

	handlerStart := time.Now()
	result, err := run(c, req)
	handled := time.Since(handlerStart)
	trace.phase("handler", err, handled)
	if err != nil {
		logger.Error().
			Err(err).
			Dur("handler_duration", handled).
			Dur("total_duration", time.Since(start)).
			Msg("handler execution failed")
		return err
	}

	total := time.Since(start)
	trace.done(total, rh, result)

	logger.Info().
		Dur("validation_duration", validated).
		Dur("handler_duration", handled).
		Dur("total_duration", total).
		Msg("request completed successfully")

	return rh.Handle(c, result)
}

// Handle adapts a typed endpoint to Echo. The last argument only fixes
// Req; every call binds a new value.
//
//	g.POST("", handler.Handle(h.Handler, h.CreateNote, http.StatusCreated, &handler.CreateNoteRequest{}))
func Handle[Req validation.Validatable, Res any](
	h Handler,
	fn HandlerFunc[Req, Res],
	status int,
	_ Req,
) echo.HandlerFunc {
	return func(c echo.Context) error {
		return handleRequest(c, func(c echo.Context, req Req) (interface{}, error) {
			return fn(c, req)
		}, JSONResponseHandler{status: status})
	}
}

// HandleFile adapts an endpoint that produces a file download.
func HandleFile[Req validation.Validatable](
	h Handler,
	fn HandlerFunc[Req, []byte],
	status int,
	_ Req,
	filename string,
	contentType string,
) echo.HandlerFunc {
	return func(c echo.Context) error {
		return handleRequest(c, func(c echo.Context, req Req) (interface{}, error) {
			return fn(c, req)
		}, FileResponseHandler{
			status:      status,
			filename:    filename,
			contentType: contentType,
		})
	}
}

// HandleNoContent adapts an endpoint that answers with a bare status.
func HandleNoContent[Req validation.Validatable](
	h Handler,
	fn HandlerFuncNoContent[Req],
	status int,
	_ Req,
) echo.HandlerFunc {
	return func(c echo.Context) error {
		return handleRequest(c, func(c echo.Context, req Req) (interface{}, error) {
			return nil, fn(c, req)
		}, NoContentResponseHandler{status: status})
	}
}
