package tool

import (
	"fmt"

	"github.com/agentroute/agentroute/core"
)

// Simulated specialist handlers. Each handler is a pure, deterministic, total
// function that embeds its input verbatim in a fixed template, standing in
// for a real backend action. The plain functions are exported alongside
// FunctionTool wrappers so callers can use them directly or register them
// with a specialist agent.

// BookingResult simulates handling of a flight or hotel booking request.
func BookingResult(request string) string {
	return fmt.Sprintf("Booking action for '%s' has been simulated.", request)
}

// InfoResult simulates handling of a general information request.
func InfoResult(request string) string {
	return fmt.Sprintf("Information request for '%s'. Result: Simulated information retrieval.", request)
}

// TechnicalSupportResult simulates handling of a technical support issue.
func TechnicalSupportResult(issue string) string {
	return fmt.Sprintf("Technical support for '%s': Troubleshooting steps have been provided. Issue logged for tracking.", issue)
}

// BillingResult simulates handling of a billing or payment inquiry.
func BillingResult(inquiry string) string {
	return fmt.Sprintf("Billing inquiry for '%s': Account information retrieved. Payment status confirmed.", inquiry)
}

// ProductInfoResult simulates handling of a product information question.
func ProductInfoResult(question string) string {
	return fmt.Sprintf("Product information for '%s': Detailed product specifications and features provided.", question)
}

// UnclearResult is the coordinator fallback for requests that could not be
// delegated to any specialist.
func UnclearResult(request string) string {
	return fmt.Sprintf("Coordinator could not delegate request: '%s'. Please clarify.", request)
}

func stringArgSchema(name, description string) map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			name: map[string]any{"type": "string", "description": description},
		},
		"required": []string{name},
	}
}

func simulatedTool(toolName, description, argName, argDescription string, handler func(string) string) *FunctionTool {
	return NewFunctionTool(
		toolName,
		description,
		stringArgSchema(argName, argDescription),
		func(toolCtx *core.ToolContext, args map[string]any) (any, error) {
			input, ok := args[argName].(string)
			if !ok {
				return nil, fmt.Errorf("field '%s' must be a string", argName)
			}
			toolCtx.LogInfo("tool.simulated.handled", "tool", toolName, "input", input)
			return handler(input), nil
		},
	)
}

// NewBookingTool returns the simulated booking tool for the Booker specialist.
func NewBookingTool() *FunctionTool {
	return simulatedTool(
		"booking_handler",
		"Handles booking requests for flights and hotels and confirms the booking was handled.",
		"request", "The user's request for booking.",
		BookingResult,
	)
}

// NewInfoTool returns the simulated information tool for the Info specialist.
func NewInfoTool() *FunctionTool {
	return simulatedTool(
		"info_handler",
		"Handles general information requests and answers user questions.",
		"request", "The user's request.",
		InfoResult,
	)
}

// NewTechnicalSupportTool returns the simulated troubleshooting tool for the
// TechnicalSupport specialist.
func NewTechnicalSupportTool() *FunctionTool {
	return simulatedTool(
		"technical_support_handler",
		"Handles technical support requests and troubleshooting.",
		"issue", "The technical issue description.",
		TechnicalSupportResult,
	)
}

// NewBillingTool returns the simulated billing tool for the Billing specialist.
func NewBillingTool() *FunctionTool {
	return simulatedTool(
		"billing_handler",
		"Handles billing and payment-related inquiries.",
		"inquiry", "The billing inquiry or question.",
		BillingResult,
	)
}

// NewProductInfoTool returns the simulated product tool for the ProductInfo
// specialist.
func NewProductInfoTool() *FunctionTool {
	return simulatedTool(
		"product_info_handler",
		"Handles product information and feature questions.",
		"question", "The product-related question.",
		ProductInfoResult,
	)
}
