package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"orderchain/internal/core/application/usecases/commands"
	"orderchain/internal/core/application/usecases/queries"
	"orderchain/internal/core/domain/model/identity"
	"orderchain/internal/core/domain/model/order"
	"orderchain/internal/pkg/errs"
)

// Server exposes the order core over HTTP. It coordinates between echo
// handlers and application use cases; callers identify themselves through
// the X-Org and X-Company-Code headers set by the API gateway.
type Server struct {
	// Command handlers
	approveActorHandler    commands.ApproveActorCommandHandler
	splitOrderHandler      commands.SplitOrderCommandHandler
	transitionOrderHandler commands.TransitionOrderCommandHandler

	// Query handlers
	getOrderHandler           queries.GetOrderQueryHandler
	listOrdersHandler         queries.ListOrdersQueryHandler
	getPublicStatusHandler    queries.GetPublicStatusQueryHandler
	decryptSellerViewHandler  queries.DecryptSellerViewQueryHandler
	decryptShipperViewHandler queries.DecryptShipperViewQueryHandler
}

// NewServer creates an HTTP server with the required command and query handlers.
func NewServer(
	approveActorHandler commands.ApproveActorCommandHandler,
	splitOrderHandler commands.SplitOrderCommandHandler,
	transitionOrderHandler commands.TransitionOrderCommandHandler,
	getOrderHandler queries.GetOrderQueryHandler,
	listOrdersHandler queries.ListOrdersQueryHandler,
	getPublicStatusHandler queries.GetPublicStatusQueryHandler,
	decryptSellerViewHandler queries.DecryptSellerViewQueryHandler,
	decryptShipperViewHandler queries.DecryptShipperViewQueryHandler,
) *Server {
	return &Server{
		approveActorHandler:       approveActorHandler,
		splitOrderHandler:         splitOrderHandler,
		transitionOrderHandler:    transitionOrderHandler,
		getOrderHandler:           getOrderHandler,
		listOrdersHandler:         listOrdersHandler,
		getPublicStatusHandler:    getPublicStatusHandler,
		decryptSellerViewHandler:  decryptSellerViewHandler,
		decryptShipperViewHandler: decryptShipperViewHandler,
	}
}

// RegisterRoutes mounts every endpoint on the given echo instance.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api/v1")

	api.POST("/actors", s.ApproveActor)

	api.POST("/orders/split", s.SplitOrder)
	api.GET("/orders", s.ListOrders)
	api.GET("/orders/:orderID", s.GetOrder)
	api.GET("/orders/:orderID/status", s.GetPublicStatus)
	api.GET("/orders/:orderID/seller-view", s.DecryptSellerView)
	api.GET("/orders/:orderID/shipper-view", s.DecryptShipperView)

	for _, action := range order.TransitionActions() {
		api.POST("/orders/:orderID/"+transitionPath(action), s.transitionHandler(action))
	}

	e.GET("/health", s.Health)
}

// ErrorResponse is the JSON body of every non-2xx reply.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// NewActorRequest is the body of POST /api/v1/actors.
type NewActorRequest struct {
	CompanyCode string `json:"companyCode"`
	Org         string `json:"org"`
}

// ActorResponse describes a freshly approved participant. The private key
// stays server-side; only the public half leaves the process.
type ActorResponse struct {
	CompanyCode  string `json:"companyCode"`
	Org          string `json:"org"`
	PublicKeyPEM string `json:"publicKeyPEM"`
	WalletID     string `json:"walletID"`
}

// ApproveActor handles POST /api/v1/actors - onboards a seller or shipper.
func (s *Server) ApproveActor(ctx echo.Context) error {
	if err := s.requirePlatform(ctx); err != nil {
		return writeError(ctx, err)
	}

	var req NewActorRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	org, err := identity.OrgFromString(req.Org)
	if err != nil {
		return writeError(ctx, err)
	}

	cmd, err := commands.NewApproveActorCommand(req.CompanyCode, org)
	if err != nil {
		return writeError(ctx, err)
	}

	actor, err := s.approveActorHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return writeError(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, ActorResponse{
		CompanyCode:  actor.CompanyCode(),
		Org:          actor.Org().String(),
		PublicKeyPEM: actor.PublicKeyPEM(),
		WalletID:     actor.WalletID(),
	})
}

// CartItemRequest is one finalized cart line in a split request.
type CartItemRequest struct {
	SKU        string `json:"sku"`
	Name       string `json:"name"`
	SellerCode string `json:"sellerCode"`
	UnitPrice  int64  `json:"unitPrice"`
	Quantity   int64  `json:"quantity"`
}

// SplitOrderRequest is the body of POST /api/v1/orders/split.
type SplitOrderRequest struct {
	MasterOrderID   string            `json:"masterOrderID"`
	PaymentMethod   string            `json:"paymentMethod"`
	ShipperCode     string            `json:"shipperCode"`
	CustomerName    string            `json:"customerName"`
	ShippingAddress string            `json:"shippingAddress"`
	ShippingPhone   string            `json:"shippingPhone"`
	ShippingTotal   int64             `json:"shippingTotal"`
	Items           []CartItemRequest `json:"items"`
}

// SubOrderResult is the outcome of one seller's sub-order in a split reply.
type SubOrderResult struct {
	OrderID    string `json:"orderID"`
	SellerCode string `json:"sellerCode"`
	Submitted  bool   `json:"submitted"`
	Error      string `json:"error,omitempty"`
}

// SplitOrder handles POST /api/v1/orders/split - splits a finalized
// checkout into per-seller sub-orders on the ledger. Replies 201 when every
// sub-order committed and 207 when only a subset did; the caller re-submits
// the same checkout to fill in the missing sellers.
func (s *Server) SplitOrder(ctx echo.Context) error {
	if err := s.requirePlatform(ctx); err != nil {
		return writeError(ctx, err)
	}

	var req SplitOrderRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	items := make([]commands.CartItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = commands.CartItem{
			SKU:        item.SKU,
			Name:       item.Name,
			SellerCode: item.SellerCode,
			UnitPrice:  item.UnitPrice,
			Quantity:   item.Quantity,
		}
	}

	cmd, err := commands.NewSplitOrderCommand(
		req.MasterOrderID,
		order.PaymentMethod(req.PaymentMethod),
		req.ShipperCode,
		req.CustomerName, req.ShippingAddress, req.ShippingPhone,
		req.ShippingTotal,
		items,
	)
	if err != nil {
		return writeError(ctx, err)
	}

	outcomes, err := s.splitOrderHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return writeError(ctx, err)
	}

	response := make([]SubOrderResult, len(outcomes))
	allSubmitted := true
	for i, outcome := range outcomes {
		response[i] = SubOrderResult{
			OrderID:    outcome.OrderID,
			SellerCode: outcome.SellerCode,
			Submitted:  outcome.Submitted,
		}
		if outcome.Err != nil {
			response[i].Error = outcome.Err.Error()
		}
		if !outcome.Submitted {
			allSubmitted = false
		}
	}

	status := http.StatusCreated
	if !allSubmitted {
		status = http.StatusMultiStatus
	}
	return ctx.JSON(status, response)
}

// TransitionResponse carries the committed transaction ID of a lifecycle
// transition.
type TransitionResponse struct {
	OrderID string `json:"orderID"`
	Action  string `json:"action"`
	TxID    string `json:"txID"`
}

// transitionHandler builds the echo handler for one lifecycle action, for
// example POST /api/v1/orders/:orderID/confirm-payment.
func (s *Server) transitionHandler(action order.Action) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		actor, err := transitionCaller(ctx, action)
		if err != nil {
			return writeError(ctx, err)
		}

		orderID, err := order.IDFromString(ctx.Param("orderID"))
		if err != nil {
			return writeError(ctx, err)
		}

		cmd, err := commands.NewTransitionOrderCommand(action, orderID, actor)
		if err != nil {
			return writeError(ctx, err)
		}

		txID, err := s.transitionOrderHandler.Handle(ctx.Request().Context(), cmd)
		if err != nil {
			return writeError(ctx, err)
		}

		return ctx.JSON(http.StatusOK, TransitionResponse{
			OrderID: orderID.String(),
			Action:  string(action),
			TxID:    txID,
		})
	}
}

// GetOrder handles GET /api/v1/orders/:orderID - full record for the
// platform, the owning seller, or the assigned shipper.
func (s *Server) GetOrder(ctx echo.Context) error {
	actor, err := callerFromHeaders(ctx)
	if err != nil {
		return writeError(ctx, err)
	}

	orderID, err := order.IDFromString(ctx.Param("orderID"))
	if err != nil {
		return writeError(ctx, err)
	}

	query, err := queries.NewGetOrderQuery(orderID, actor)
	if err != nil {
		return writeError(ctx, err)
	}

	record, err := s.getOrderHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return writeError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, record)
}

// ListOrders handles GET /api/v1/orders - org-scoped listing.
func (s *Server) ListOrders(ctx echo.Context) error {
	actor, err := callerFromHeaders(ctx)
	if err != nil {
		return writeError(ctx, err)
	}

	query, err := queries.NewListOrdersQuery(actor)
	if err != nil {
		return writeError(ctx, err)
	}

	summaries, err := s.listOrdersHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return writeError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, summaries)
}

// GetPublicStatus handles GET /api/v1/orders/:orderID/status - the
// anonymous tier, no caller identity required.
func (s *Server) GetPublicStatus(ctx echo.Context) error {
	orderID, err := order.IDFromString(ctx.Param("orderID"))
	if err != nil {
		return writeError(ctx, err)
	}

	query, err := queries.NewGetPublicStatusQuery(orderID)
	if err != nil {
		return writeError(ctx, err)
	}

	status, err := s.getPublicStatusHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return writeError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, status)
}

// DecryptSellerView handles GET /api/v1/orders/:orderID/seller-view -
// decrypts the seller tier for the owning seller.
func (s *Server) DecryptSellerView(ctx echo.Context) error {
	actor, err := callerFromHeaders(ctx)
	if err != nil {
		return writeError(ctx, err)
	}

	orderID, err := order.IDFromString(ctx.Param("orderID"))
	if err != nil {
		return writeError(ctx, err)
	}

	query, err := queries.NewDecryptSellerViewQuery(orderID, actor.CompanyCode())
	if err != nil {
		return writeError(ctx, err)
	}

	view, err := s.decryptSellerViewHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return writeError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, view)
}

// DecryptShipperView handles GET /api/v1/orders/:orderID/shipper-view -
// decrypts the shipper tier for the assigned shipper.
func (s *Server) DecryptShipperView(ctx echo.Context) error {
	actor, err := callerFromHeaders(ctx)
	if err != nil {
		return writeError(ctx, err)
	}

	orderID, err := order.IDFromString(ctx.Param("orderID"))
	if err != nil {
		return writeError(ctx, err)
	}

	query, err := queries.NewDecryptShipperViewQuery(orderID, actor.CompanyCode())
	if err != nil {
		return writeError(ctx, err)
	}

	view, err := s.decryptShipperViewHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return writeError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, view)
}

// Health handles GET /health.
func (s *Server) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// transitionCaller resolves the actor for a lifecycle action. Return
// requests are customer calls scoped by order ID alone, so they carry no
// role headers; every other action names its acting organization.
func transitionCaller(ctx echo.Context, action order.Action) (identity.Actor, error) {
	if action == order.ActionRequestReturn && ctx.Request().Header.Get("X-Org") == "" {
		return identity.Customer(), nil
	}
	return callerFromHeaders(ctx)
}

// callerFromHeaders resolves the acting organization from the X-Org and
// X-Company-Code headers. The gateway authenticates callers; by the time a
// request reaches this server the headers are trusted.
func callerFromHeaders(ctx echo.Context) (identity.Actor, error) {
	orgHeader := ctx.Request().Header.Get("X-Org")
	if orgHeader == "" {
		return identity.Actor{}, errs.NewAuthenticationError("X-Org header is missing")
	}

	org, err := identity.OrgFromString(orgHeader)
	if err != nil {
		return identity.Actor{}, errs.NewAuthenticationError("X-Org header is invalid: " + orgHeader)
	}

	return identity.NewActor(org, ctx.Request().Header.Get("X-Company-Code"))
}

func (s *Server) requirePlatform(ctx echo.Context) error {
	actor, err := callerFromHeaders(ctx)
	if err != nil {
		return err
	}
	if actor.Org() != identity.PlatformOrg {
		return errs.NewAuthorizationError("platform endpoint", actor.String())
	}
	return nil
}

// transitionPath maps a lifecycle action to its URL segment, for example
// ConfirmPayment to confirm-payment.
func transitionPath(action order.Action) string {
	switch action {
	case order.ActionConfirmPayment:
		return "confirm-payment"
	case order.ActionShipOrder:
		return "ship"
	case order.ActionConfirmDelivery:
		return "confirm-delivery"
	case order.ActionConfirmCODDelivery:
		return "confirm-cod-delivery"
	case order.ActionRemitCOD:
		return "remit-cod"
	case order.ActionCancelOrder:
		return "cancel"
	case order.ActionRequestReturn:
		return "request-return"
	case order.ActionShipReturn:
		return "ship-return"
	case order.ActionConfirmReturnReceived:
		return "confirm-return-received"
	case order.ActionPayout:
		return "payout"
	default:
		return string(action)
	}
}

// writeError maps domain error kinds to HTTP statuses.
func writeError(ctx echo.Context, err error) error {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, errs.ErrValueIsRequired), errors.Is(err, errs.ErrValueIsInvalid):
		status = http.StatusBadRequest
	case errors.Is(err, errs.ErrAuthentication):
		status = http.StatusUnauthorized
	case errors.Is(err, errs.ErrAuthorization):
		status = http.StatusForbidden
	case errors.Is(err, errs.ErrObjectNotFound):
		status = http.StatusNotFound
	case errors.Is(err, errs.ErrInvalidTransition):
		status = http.StatusConflict
	case errors.Is(err, errs.ErrEncryptionSizeLimit):
		status = http.StatusRequestEntityTooLarge
	case errors.Is(err, errs.ErrLedgerUnavailable):
		status = http.StatusServiceUnavailable
	}

	return ctx.JSON(status, ErrorResponse{
		Code:    status,
		Message: err.Error(),
	})
}
