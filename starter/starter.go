package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"checkout-flow/api"
	"checkout-flow/codec"
	"checkout-flow/config"
	"checkout-flow/logging"
	"checkout-flow/models"
	"checkout-flow/workflows"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/sdk/client"
	"go.uber.org/zap"
)

var logger *zap.SugaredLogger

func main() {
	logger = logging.NewLogger()
	defer logger.Sync()

	sessionFlag := &cli.StringFlag{
		Name:     "session",
		Aliases:  []string{"s"},
		Usage:    "Checkout session ID",
		Required: true,
	}
	tokenFlag := &cli.StringFlag{
		Name:  "token",
		Usage: "Bearer token forwarded to the order backend",
	}

	app := &cli.App{
		Name:  "starter",
		Usage: "Drive checkout workflows through the Temporal client",
		Commands: []*cli.Command{
			{
				Name:  "start",
				Usage: "Start a fresh checkout for a session",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "session",
						Aliases: []string{"s"},
						Usage:   "Checkout session ID (generated when omitted)",
					},
					&cli.StringFlag{
						Name:  "order-id",
						Usage: "Backend order ID (empty starts a checkout without an order)",
						Value: "1",
					},
					&cli.StringFlag{
						Name:  "merchant-uid",
						Usage: "Merchant-side order reference",
					},
					&cli.Float64Flag{
						Name:  "amount",
						Usage: "Order total",
						Value: 1000,
					},
					&cli.StringFlag{
						Name:  "consumer",
						Usage: "Buyer name",
						Value: "Test Buyer",
					},
					&cli.StringFlag{
						Name:  "email",
						Usage: "Buyer email",
						Value: "buyer@example.com",
					},
					&cli.StringFlag{
						Name:  "phone",
						Usage: "Buyer phone number",
						Value: "010-0000-0000",
					},
					&cli.StringFlag{
						Name:  "device",
						Usage: "Device class (desktop or mobile)",
						Value: string(models.DeviceDesktop),
					},
					tokenFlag,
					&cli.BoolFlag{
						Name:  "wait",
						Usage: "Wait for the checkout to finish and print its navigation",
					},
				},
				Action: startCheckout,
			},
			{
				Name:  "event",
				Usage: "Relay a widget event to a running checkout",
				Flags: []cli.Flag{
					sessionFlag,
					&cli.StringFlag{
						Name:     "kind",
						Usage:    "Event kind (load_failed, result, redirecting)",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "success",
						Usage: "Widget result success flag",
					},
					&cli.StringFlag{
						Name:  "imp-uid",
						Usage: "Payment provider transaction ID",
					},
					&cli.StringFlag{
						Name:  "merchant-uid",
						Usage: "Merchant-side order reference",
					},
					&cli.StringFlag{
						Name:  "error-code",
						Usage: "Widget error code",
					},
					&cli.StringFlag{
						Name:  "error-msg",
						Usage: "Widget error message",
					},
				},
				Action: sendEvent,
			},
			{
				Name:   "teardown",
				Usage:  "Detach the widget script from a running checkout",
				Flags:  []cli.Flag{sessionFlag},
				Action: teardown,
			},
			{
				Name:  "return",
				Usage: "Run the redirect return for a session",
				Flags: []cli.Flag{
					sessionFlag,
					&cli.StringFlag{
						Name:  "imp-success",
						Usage: "imp_success query value",
					},
					&cli.StringFlag{
						Name:  "imp-uid",
						Usage: "imp_uid query value",
					},
					&cli.StringFlag{
						Name:  "merchant-uid",
						Usage: "merchant_uid query value",
					},
					tokenFlag,
					&cli.BoolFlag{
						Name:  "legacy",
						Usage: "Create the payment with a null order when no draft is stored",
					},
				},
				Action: redirectReturn,
			},
			{
				Name:   "query",
				Usage:  "Print the state of a session's checkout",
				Flags:  []cli.Flag{sessionFlag},
				Action: queryState,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Fatal(err)
	}
}

func dial() (client.Client, config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, cfg, err
	}
	if cfg.GeneratedKey {
		logger.Warn("using generated encryption key; set ENCRYPTION_KEY to match the worker")
	}

	dataConverter, err := codec.NewEncryptionDataConverter(cfg.EncryptionKey)
	if err != nil {
		return nil, cfg, fmt.Errorf("failed to create encryption data converter: %w", err)
	}

	c, err := client.Dial(client.Options{
		HostPort:      cfg.TemporalAddress,
		DataConverter: dataConverter,
		Logger:        logging.NewTemporalLogger(logger),
	})
	if err != nil {
		return nil, cfg, fmt.Errorf("unable to create Temporal client: %w", err)
	}
	return c, cfg, nil
}

func startCheckout(cCtx *cli.Context) error {
	c, cfg, err := dial()
	if err != nil {
		return err
	}
	defer c.Close()

	session := cCtx.String("session")
	if session == "" {
		session = uuid.NewString()
	}

	device := models.DeviceClass(cCtx.String("device"))
	if device != models.DeviceDesktop && device != models.DeviceMobile {
		return fmt.Errorf("unknown device %q, valid devices: desktop, mobile", device)
	}

	var draft *models.OrderDraft
	if id := models.ID(cCtx.String("order-id")); id != "" {
		draft = sampleDraft(id, cCtx)
	}

	in := models.CheckoutInput{
		SessionID:      session,
		Draft:          draft,
		Device:         device,
		AccessToken:    cCtx.String("token"),
		Widget:         cfg.Widget,
		PaymentTimeout: cfg.PaymentTimeout,
	}
	opts := client.StartWorkflowOptions{
		ID:                       workflows.CheckoutWorkflowID(session),
		TaskQueue:                cfg.TaskQueue,
		WorkflowIDConflictPolicy: enumspb.WORKFLOW_ID_CONFLICT_POLICY_TERMINATE_EXISTING,
	}

	ctx := context.Background()
	we, err := c.ExecuteWorkflow(ctx, opts, workflows.CheckoutWorkflow, in)
	if err != nil {
		return fmt.Errorf("unable to execute workflow: %w", err)
	}

	logger.Infow("started checkout", "sessionID", session, "workflowID", we.GetID(), "runID", we.GetRunID())
	fmt.Printf("\nTo relay a widget result, run:\n")
	fmt.Printf("  starter event -s %s --kind result --success --imp-uid imp_123\n", session)
	fmt.Printf("To query state, run:\n")
	fmt.Printf("  starter query -s %s\n", session)

	if !cCtx.Bool("wait") {
		return nil
	}

	logger.Info("waiting for checkout to finish")
	var nav models.Navigation
	if err := we.Get(ctx, &nav); err != nil {
		return fmt.Errorf("checkout completed with error: %w", err)
	}
	return printJSON("Navigation", nav)
}

// sampleDraft builds a two-item order whose prices add up to the amount
func sampleDraft(orderID models.ID, cCtx *cli.Context) *models.OrderDraft {
	amount := cCtx.Float64("amount")
	items := []models.OrderItem{
		{ProductID: "1", ProductName: "Sample Product 1", Quantity: 2},
		{ProductID: "2", ProductName: "Sample Product 2", Quantity: 1},
	}

	totalQuantity := 0
	for _, item := range items {
		totalQuantity += item.Quantity
	}
	for i := range items {
		items[i].Price = amount / float64(totalQuantity)
	}

	return &models.OrderDraft{
		OrderID:       orderID,
		MerchantUID:   cCtx.String("merchant-uid"),
		OrderItemList: items,
		OrderDTO: models.OrderDTO{
			TotalPrice:  amount,
			Consumer:    cCtx.String("consumer"),
			Email:       cCtx.String("email"),
			PhoneNumber: cCtx.String("phone"),
		},
	}
}

func sendEvent(cCtx *cli.Context) error {
	ev := models.WidgetEvent{Kind: models.WidgetEventKind(cCtx.String("kind"))}
	if ev.Kind == models.WidgetEventResult {
		ev.Result = &models.WidgetResult{
			Success:     cCtx.Bool("success"),
			ImpUID:      cCtx.String("imp-uid"),
			MerchantUID: cCtx.String("merchant-uid"),
			ErrorCode:   cCtx.String("error-code"),
			ErrorMsg:    cCtx.String("error-msg"),
		}
	}
	if err := api.Validate.Struct(ev); err != nil {
		return fmt.Errorf("invalid event: %w", err)
	}

	c, _, err := dial()
	if err != nil {
		return err
	}
	defer c.Close()

	workflowID := workflows.CheckoutWorkflowID(cCtx.String("session"))
	if err := c.SignalWorkflow(context.Background(), workflowID, "", workflows.SignalWidgetEvent, ev); err != nil {
		return fmt.Errorf("failed to send event: %w", err)
	}

	logger.Infow("event sent", "workflowID", workflowID, "kind", ev.Kind)
	return nil
}

func teardown(cCtx *cli.Context) error {
	c, _, err := dial()
	if err != nil {
		return err
	}
	defer c.Close()

	workflowID := workflows.CheckoutWorkflowID(cCtx.String("session"))
	if err := c.SignalWorkflow(context.Background(), workflowID, "", workflows.SignalTeardown, "starter teardown"); err != nil {
		return fmt.Errorf("failed to send teardown: %w", err)
	}

	logger.Infow("teardown sent", "workflowID", workflowID)
	return nil
}

func redirectReturn(cCtx *cli.Context) error {
	c, cfg, err := dial()
	if err != nil {
		return err
	}
	defer c.Close()

	session := cCtx.String("session")
	in := models.RedirectInput{
		SessionID: session,
		Params: models.RedirectParams{
			ImpSuccess:  cCtx.String("imp-success"),
			MerchantUID: cCtx.String("merchant-uid"),
			ImpUID:      cCtx.String("imp-uid"),
		},
		AccessToken:         cCtx.String("token"),
		StrictDraftRecovery: cfg.StrictDraftRecovery && !cCtx.Bool("legacy"),
	}
	opts := client.StartWorkflowOptions{
		ID:        workflows.ReturnWorkflowID(session),
		TaskQueue: cfg.TaskQueue,
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	we, err := c.ExecuteWorkflow(ctx, opts, workflows.RedirectReturnWorkflow, in)
	if err != nil {
		return fmt.Errorf("unable to execute workflow: %w", err)
	}

	var nav models.Navigation
	if err := we.Get(ctx, &nav); err != nil {
		return fmt.Errorf("redirect return completed with error: %w", err)
	}
	return printJSON("Navigation", nav)
}

func queryState(cCtx *cli.Context) error {
	c, _, err := dial()
	if err != nil {
		return err
	}
	defer c.Close()

	workflowID := workflows.CheckoutWorkflowID(cCtx.String("session"))
	resp, err := c.QueryWorkflow(context.Background(), workflowID, "", workflows.QueryState)
	if err != nil {
		return fmt.Errorf("failed to query workflow: %w", err)
	}

	var state models.CheckoutState
	if err := resp.Get(&state); err != nil {
		return fmt.Errorf("failed to decode query result: %w", err)
	}
	return printJSON("Checkout State", state)
}

func printJSON(title string, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", title, err)
	}
	fmt.Printf("\n%s:\n%s\n", title, out)
	return nil
}
