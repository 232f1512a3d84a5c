package api

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"checkout-flow/models"
	"checkout-flow/workflows"

	"github.com/google/uuid"
	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"
)

type StartCheckoutPayload struct {
	OrderData *models.OrderDraft `json:"orderData"`
}

type CheckoutStarted struct {
	SessionID  string `json:"sessionId"`
	WorkflowID string `json:"workflowId"`
	RunID      string `json:"runId"`
}

var errNoSession = errors.New("no checkout session")

// startCheckoutHandler starts a fresh checkout for the session. A
// checkout already running for the same session is replaced.
func (s *Server) startCheckoutHandler(w http.ResponseWriter, r *http.Request) {
	var payload StartCheckoutPayload
	if err := readJSON(w, r, &payload); err != nil && !errors.Is(err, io.EOF) {
		s.badRequestResponse(w, r, err)
		return
	}

	session := ensureSession(w, r)
	w.Header().Set(SessionHeader, session)

	in := models.CheckoutInput{
		SessionID:      session,
		Draft:          payload.OrderData,
		Device:         s.detector.Detect(r),
		AccessToken:    accessToken(r),
		Widget:         s.cfg.Widget,
		PaymentTimeout: s.cfg.PaymentTimeout,
	}
	opts := client.StartWorkflowOptions{
		ID:                       workflows.CheckoutWorkflowID(session),
		TaskQueue:                s.cfg.TaskQueue,
		WorkflowIDConflictPolicy: enumspb.WORKFLOW_ID_CONFLICT_POLICY_TERMINATE_EXISTING,
	}

	we, err := s.client.ExecuteWorkflow(r.Context(), opts, workflows.CheckoutWorkflow, in)
	if err != nil {
		s.internalServerError(w, r, err)
		return
	}

	s.logger.Infow("checkout started", "sessionID", session, "workflowID", we.GetID(), "device", in.Device)

	resp := CheckoutStarted{SessionID: session, WorkflowID: we.GetID(), RunID: we.GetRunID()}
	if err := s.jsonResponse(w, http.StatusCreated, resp); err != nil {
		s.internalServerError(w, r, err)
	}
}

func (s *Server) getCheckoutHandler(w http.ResponseWriter, r *http.Request) {
	session := sessionID(r)
	if session == "" {
		s.notFoundResponse(w, r, errNoSession)
		return
	}

	val, err := s.client.QueryWorkflow(r.Context(), workflows.CheckoutWorkflowID(session), "", workflows.QueryState)
	if err != nil {
		s.workflowError(w, r, err)
		return
	}

	var state models.CheckoutState
	if err := val.Get(&state); err != nil {
		s.internalServerError(w, r, err)
		return
	}

	if err := s.jsonResponse(w, http.StatusOK, state); err != nil {
		s.internalServerError(w, r, err)
	}
}

func (s *Server) widgetEventHandler(w http.ResponseWriter, r *http.Request) {
	var ev models.WidgetEvent
	if err := readJSON(w, r, &ev); err != nil {
		s.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(ev); err != nil {
		s.badRequestResponse(w, r, err)
		return
	}

	session := sessionID(r)
	if session == "" {
		s.notFoundResponse(w, r, errNoSession)
		return
	}

	err := s.client.SignalWorkflow(r.Context(), workflows.CheckoutWorkflowID(session), "", workflows.SignalWidgetEvent, ev)
	if err != nil {
		s.workflowError(w, r, err)
		return
	}

	if err := s.jsonResponse(w, http.StatusAccepted, map[string]string{"kind": string(ev.Kind)}); err != nil {
		s.internalServerError(w, r, err)
	}
}

// teardownCheckoutHandler detaches the widget script when the checkout
// view goes away. The flow itself keeps waiting for its outcome.
func (s *Server) teardownCheckoutHandler(w http.ResponseWriter, r *http.Request) {
	session := sessionID(r)
	if session == "" {
		s.notFoundResponse(w, r, errNoSession)
		return
	}

	err := s.client.SignalWorkflow(r.Context(), workflows.CheckoutWorkflowID(session), "", workflows.SignalTeardown, "checkout view closed")
	if err != nil {
		s.workflowError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// redirectReturnHandler is the m_redirect_url target. It runs the
// redirect-return flow to completion and sends the browser on.
func (s *Server) redirectReturnHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	session := sessionID(r)
	if session == "" {
		session = uuid.NewString()
	}

	in := models.RedirectInput{
		SessionID: session,
		Params: models.RedirectParams{
			ImpSuccess:  q.Get("imp_success"),
			MerchantUID: q.Get("merchant_uid"),
			ImpUID:      q.Get("imp_uid"),
		},
		AccessToken:         accessToken(r),
		StrictDraftRecovery: s.cfg.StrictDraftRecovery,
	}
	opts := client.StartWorkflowOptions{
		ID:        workflows.ReturnWorkflowID(session),
		TaskQueue: s.cfg.TaskQueue,
	}

	we, err := s.client.ExecuteWorkflow(r.Context(), opts, workflows.RedirectReturnWorkflow, in)
	if err != nil {
		s.internalServerError(w, r, err)
		return
	}

	var nav models.Navigation
	if err := we.Get(r.Context(), &nav); err != nil {
		s.internalServerError(w, r, err)
		return
	}

	s.logger.Infow("redirect return handled",
		"sessionID", session,
		"impSuccess", in.Params.ImpSuccess,
		"target", nav.Target,
	)

	if wantsJSON(r) {
		if err := s.jsonResponse(w, http.StatusOK, nav); err != nil {
			s.internalServerError(w, r, err)
		}
		return
	}
	http.Redirect(w, r, s.navigationURL(nav), http.StatusSeeOther)
}

func (s *Server) workflowError(w http.ResponseWriter, r *http.Request, err error) {
	var notFound *serviceerror.NotFound
	if errors.As(err, &notFound) {
		s.notFoundResponse(w, r, err)
		return
	}
	s.internalServerError(w, r, err)
}

// navigationURL turns a navigation into a storefront URL, carrying the
// alert and payment identifiers as query parameters.
func (s *Server) navigationURL(nav models.Navigation) string {
	u, err := url.Parse(strings.TrimRight(s.cfg.FrontendURL, "/") + string(nav.Target))
	if err != nil {
		return string(nav.Target)
	}

	q := u.Query()
	if nav.Alert != "" {
		q.Set("alert", nav.Alert)
	}
	if nav.Error != "" {
		q.Set("error", nav.Error)
	}
	if nav.OrderInfo.HasOrderID() {
		q.Set("orderId", string(nav.OrderInfo.OrderID))
	}
	if p := nav.PaymentInfo; p != nil {
		if p.ImpUID != "" {
			q.Set("imp_uid", p.ImpUID)
		}
		if p.MerchantUID != "" {
			q.Set("merchant_uid", p.MerchantUID)
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
