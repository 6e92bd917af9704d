package core

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"

	"go.uber.org/zap"

	"github.com/muurk/onvifctl/internal/logging"
	"github.com/muurk/onvifctl/internal/soap"
	"github.com/muurk/onvifctl/internal/validate"
)

var methodNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.\-]*$`)

// Service holds the per-module state shared by all of a feature module's
// operations: its category, the XML prefix of its method elements, its
// namespace set and, once Init has been called, its Session.
type Service struct {
	category   soap.Category
	prefix     string
	namespaces []string
	dispatcher soap.Dispatcher

	mu      sync.RWMutex
	session *Session
}

// NewService creates an uninitialized service. namespaces is copied.
func NewService(category soap.Category, prefix string, namespaces []string, dispatcher soap.Dispatcher) *Service {
	if dispatcher == nil {
		dispatcher = soap.NewHTTPDispatcher()
	}
	return &Service{
		category:   category,
		prefix:     prefix,
		namespaces: append([]string(nil), namespaces...),
		dispatcher: dispatcher,
	}
}

// Init attaches the session. It may be called once.
func (s *Service) Init(session *Session) error {
	if session == nil {
		return soap.NewInvalidArgument("Init", "session", "is missing")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session != nil {
		return soap.NewInvalidArgument("Init", "session", "is already set")
	}
	s.session = session

	logging.Debug("Service initialized",
		zap.String("category", string(s.category)),
		zap.String("session", session.Redacted()),
	)
	return nil
}

// Session returns the attached session, or nil before Init
func (s *Service) Session() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

// Category returns the service category
func (s *Service) Category() soap.Category { return s.category }

// Prefix returns the XML prefix used for method elements
func (s *Service) Prefix() string { return s.prefix }

// Namespaces returns a copy of the namespace set
func (s *Service) Namespaces() []string {
	return append([]string(nil), s.namespaces...)
}

// BuildRequest runs methodName with body (the content of the method
// element, possibly empty). When callback is a valid Callback it is called
// exactly once and BuildRequest returns nil; when callback is nil the
// returned Future carries the outcome. Any other callback value yields a
// rejected Future and nothing is sent.
func (s *Service) BuildRequest(ctx context.Context, methodName string, body string, callback any) *Future {
	cb, err := asCallback(methodName, callback)
	if err != nil {
		return Rejected(err)
	}

	var fut *Future
	if cb == nil {
		fut = newFuture()
	}

	go func() {
		res, err := s.execute(ctx, methodName, body)
		if cb != nil {
			cb(err, res)
			return
		}
		fut.settle(res, err)
	}()

	return fut
}

// SendFragment runs methodName with f as the method element's content. A
// fragment that cannot be serialized rejects the call without sending it.
func (s *Service) SendFragment(ctx context.Context, methodName string, f *soap.Fragment, callback any) *Future {
	body, err := f.Build()
	if err != nil {
		return s.Reject(methodName, &soap.Error{
			Kind:     soap.ErrInvalidArgument,
			Method:   methodName,
			Argument: "body",
			Message:  "could not be serialized",
			Err:      err,
		}, callback)
	}
	return s.BuildRequest(ctx, methodName, body, callback)
}

// Reject delivers err for methodName on the channel callback selects
func (s *Service) Reject(methodName string, err error, callback any) *Future {
	cb, cbErr := asCallback(methodName, callback)
	if cbErr != nil {
		return Rejected(cbErr)
	}
	if cb == nil {
		return Rejected(err)
	}
	go cb(err, nil)
	return nil
}

// NotImplemented rejects methodName with a NotImplemented error
func (s *Service) NotImplemented(methodName string, callback any) *Future {
	return s.Reject(methodName, soap.NewNotImplemented(methodName), callback)
}

func (s *Service) execute(ctx context.Context, methodName, body string) (*soap.Result, error) {
	if msg := validate.InvalidValue(methodName, validate.String); msg != "" {
		return nil, soap.NewInvalidArgument(methodName, "methodName", msg)
	}
	if !methodNamePattern.MatchString(methodName) {
		return nil, soap.NewInvalidArgument(methodName, "methodName", "is not a valid XML element name")
	}

	session := s.Session()
	if session == nil {
		return nil, soap.NewInvalidArgument(methodName, "session", "is not set; call Init first")
	}

	envelope, err := soap.CreateRequest(s.methodElement(methodName, body), s.namespaces,
		session.ClockDifference(), session.Username(), session.Password())
	if err != nil {
		var e *soap.Error
		if errors.As(err, &e) {
			e.Method = methodName
		}
		return nil, err
	}

	raw, err := s.dispatcher.MakeRequest(ctx, s.category, session.Address(), methodName, envelope)
	if err != nil {
		return nil, err
	}

	res, err := soap.ParseResponse(methodName, raw)
	if soap.IsMalformedResponse(err) {
		logging.LogRawBytes("Malformed "+methodName+" response", raw)
	}
	return res, err
}

func (s *Service) methodElement(methodName, body string) string {
	name := methodName
	if s.prefix != "" {
		name = s.prefix + ":" + methodName
	}
	if body == "" {
		return "<" + name + "/>"
	}
	return "<" + name + ">" + body + "</" + name + ">"
}

// asCallback returns nil for a nil callback, the callback itself for a
// Callback-shaped function, and an InvalidArgument error otherwise
func asCallback(methodName string, callback any) (Callback, error) {
	if callback == nil {
		return nil, nil
	}
	switch cb := callback.(type) {
	case Callback:
		if cb != nil {
			return cb, nil
		}
	case func(error, *soap.Result):
		if cb != nil {
			return cb, nil
		}
	}
	if !validate.IsValidCallback(callback) {
		return nil, soap.NewInvalidArgument(methodName, "callback", validate.InvalidValue(callback, validate.Function))
	}
	return nil, soap.NewInvalidArgument(methodName, "callback", fmt.Sprintf("must be func(error, *soap.Result), got %T", callback))
}
