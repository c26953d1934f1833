package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/jsonrpc"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	currency "go-currency-exchange-mcp"
	"go-currency-exchange-mcp/exchange"
)

const (
	// ExchangeToolName is the name clients call the conversion tool by.
	ExchangeToolName = "exchange"

	exchangeToolDescription = "International Currency Exchange Service"

	// codeInvalidParams is the JSON-RPC 2.0 "invalid params" error code.
	codeInvalidParams = -32602
)

// ExchangeInput arguments of the exchange tool
type ExchangeInput struct {
	Amount       float64  `json:"amount"`
	FromCurrency string   `json:"fromCurrency"`
	ToCurrencies []string `json:"toCurrencies"`
}

// Exchange is the exchange tool: its definition, input schema and handler.
type Exchange struct {
	tool     *mcp.Tool
	resolved *jsonschema.Resolved
	service  exchange.Service
	logger   log.Logger
}

// NewExchange builds the exchange tool for the currencies of table.
func NewExchange(table *currency.Table, s exchange.Service, logger log.Logger) (*Exchange, error) {
	schema := InputSchema(table)
	resolved, err := schema.Resolve(nil)
	if err != nil {
		return nil, fmt.Errorf("resolving %s input schema: %w", ExchangeToolName, err)
	}

	return &Exchange{
		tool: &mcp.Tool{
			Name:        ExchangeToolName,
			Description: exchangeToolDescription,
			InputSchema: schema,
			Annotations: &mcp.ToolAnnotations{
				ReadOnlyHint:   true,
				IdempotentHint: true,
			},
		},
		resolved: resolved,
		service:  s,
		logger:   logger,
	}, nil
}

// InputSchema describes the accepted arguments: a positive amount, the base
// currency of table, and at least one quoted currency.
func InputSchema(table *currency.Table) *jsonschema.Schema {
	codes := table.Codes()
	enum := make([]any, 0, len(codes))
	for _, c := range codes {
		enum = append(enum, string(c))
	}
	exclusiveMinimum := 0.0
	minItems := 1

	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"amount": {
				Type:             "number",
				Description:      "Amount to convert, in fromCurrency",
				ExclusiveMinimum: &exclusiveMinimum,
			},
			"fromCurrency": {
				Type:        "string",
				Description: "Currency the amount is expressed in",
				Enum:        []any{string(table.Base())},
			},
			"toCurrencies": {
				Type:        "array",
				Description: "Currencies to convert into, in output order",
				Items:       &jsonschema.Schema{Type: "string", Enum: enum},
				MinItems:    &minItems,
			},
		},
		Required: []string{"amount", "fromCurrency", "toCurrencies"},
	}
}

// Tool returns the MCP tool definition.
func (e *Exchange) Tool() *mcp.Tool {
	return e.tool
}

// Handle implements mcp.ToolHandler. Arguments failing the input schema are
// rejected with an invalid-params protocol error; conversion failures are
// returned as a result with IsError set.
func (e *Exchange) Handle(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var raw json.RawMessage
	if req != nil && req.Params != nil {
		raw = req.Params.Arguments
	}

	in, err := e.decode(raw)
	if err != nil {
		level.Warn(e.logger).Log("msg", "rejected tool arguments", "tool", ExchangeToolName, "err", err)
		return nil, &jsonrpc.Error{Code: codeInvalidParams, Message: err.Error()}
	}

	return e.call(ctx, in), nil
}

// decode validates raw against the input schema and unmarshals it.
func (e *Exchange) decode(raw json.RawMessage) (ExchangeInput, error) {
	var instance any = map[string]any{}
	if len(raw) > 0 && string(raw) != "null" {
		if err := json.Unmarshal(raw, &instance); err != nil {
			return ExchangeInput{}, fmt.Errorf("invalid arguments: %w", err)
		}
	}
	if err := e.resolved.Validate(instance); err != nil {
		return ExchangeInput{}, fmt.Errorf("invalid arguments: %w", err)
	}

	var in ExchangeInput
	if err := json.Unmarshal(raw, &in); err != nil {
		return ExchangeInput{}, fmt.Errorf("invalid arguments: %w", err)
	}
	return in, nil
}

// call runs the conversion, absorbing every failure into an error result.
func (e *Exchange) call(ctx context.Context, in ExchangeInput) (result *mcp.CallToolResult) {
	defer func() {
		if r := recover(); r != nil {
			level.Error(e.logger).Log("msg", "tool panicked", "tool", ExchangeToolName, "panic", r)
			result = ErrorResult(fmt.Errorf("%v", r))
		}
	}()

	to := make([]currency.Currency, 0, len(in.ToCurrencies))
	for _, c := range in.ToCurrencies {
		to = append(to, currency.Currency(c))
	}

	c, err := e.service.Convert(ctx, currency.Amount(in.Amount), currency.Currency(in.FromCurrency), to)
	if err != nil {
		return ErrorResult(err)
	}
	return TextResult(exchange.Format(c))
}

// TextResult creates a CallToolResult with text content.
func TextResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

// ErrorResult creates a CallToolResult reporting a failed calculation.
func ErrorResult(err error) *mcp.CallToolResult {
	if err == nil {
		err = errors.New("unknown error occurred")
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: "Error processing exchange rate calculation: " + err.Error()},
		},
		IsError: true,
	}
}
