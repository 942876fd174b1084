package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

// Handlers holds the handler functions for each MCP tool.
type Handlers struct {
	client *PressgateClient
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(client *PressgateClient) *Handlers {
	return &Handlers{client: client}
}

// HandleCheckContentAccess verifies a user's access to content.
func (h *Handlers) HandleCheckContentAccess(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID := req.GetString("user_id", "")
	if userID == "" {
		return mcp.NewToolResultError("user_id is required"), nil
	}
	contentID := req.GetString("content_id", "")
	if contentID == "" {
		return mcp.NewToolResultError("content_id is required"), nil
	}
	level := req.GetString("level", "")
	accessToken := req.GetString("access_token", "")

	raw, err := h.client.VerifyAccess(ctx, userID, contentID, level, accessToken)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Access check failed: %v", err)), nil
	}

	text, err := formatDecision(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse decision: %v", err)), nil
	}

	return mcp.NewToolResultText(text), nil
}

// HandleGrantTemporaryAccess purchases pay-per-view access.
func (h *Handlers) HandleGrantTemporaryAccess(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID := req.GetString("user_id", "")
	if userID == "" {
		return mcp.NewToolResultError("user_id is required"), nil
	}
	contentID := req.GetString("content_id", "")
	if contentID == "" {
		return mcp.NewToolResultError("content_id is required"), nil
	}
	paymentToken := req.GetString("payment_token", "")
	if paymentToken == "" {
		return mcp.NewToolResultError("payment_token is required"), nil
	}
	amountPaid := req.GetFloat("amount_paid", 0)
	if amountPaid <= 0 {
		return mcp.NewToolResultError("amount_paid must be a positive amount"), nil
	}
	duration := req.GetInt("duration_seconds", 3600)

	raw, err := h.client.PurchaseGrant(ctx, userID, contentID, duration, paymentToken, amountPaid)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Grant purchase failed: %v", err)), nil
	}

	text, err := formatGrant(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse grant: %v", err)), nil
	}

	return mcp.NewToolResultText(text), nil
}

// HandleCreateSubscription subscribes a user to a plan.
func (h *Handlers) HandleCreateSubscription(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID := req.GetString("user_id", "")
	if userID == "" {
		return mcp.NewToolResultError("user_id is required"), nil
	}
	planID := req.GetString("plan_id", "")
	if planID == "" {
		return mcp.NewToolResultError("plan_id is required"), nil
	}
	paymentMethod := req.GetString("payment_method", "")
	billingPeriod := req.GetString("billing_period", "")

	raw, err := h.client.CreateSubscription(ctx, userID, planID, paymentMethod, billingPeriod)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Subscription failed: %v", err)), nil
	}

	text, err := formatSubscription(raw, "Subscription created")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse subscription: %v", err)), nil
	}

	return mcp.NewToolResultText(text), nil
}

// HandleGetUserSubscription looks up a user's current subscription.
func (h *Handlers) HandleGetUserSubscription(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID := req.GetString("user_id", "")
	if userID == "" {
		return mcp.NewToolResultError("user_id is required"), nil
	}

	raw, err := h.client.GetSubscription(ctx, userID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Subscription lookup failed: %v", err)), nil
	}

	text, err := formatSubscription(raw, fmt.Sprintf("Subscription for %s", userID))
	if err != nil {
		return mcp.NewToolResultText(formatJSON(raw)), nil
	}
	return mcp.NewToolResultText(text), nil
}

// HandleCancelSubscription cancels a user's subscription.
func (h *Handlers) HandleCancelSubscription(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID := req.GetString("user_id", "")
	if userID == "" {
		return mcp.NewToolResultError("user_id is required"), nil
	}

	_, err := h.client.CancelSubscription(ctx, userID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Cancellation failed: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"Subscription cancelled for %s.\n"+
			"The user keeps free-tier access to public content.",
		userID)), nil
}

// HandleListSubscriptionPlans lists the available plans.
func (h *Handlers) HandleListSubscriptionPlans(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := h.client.ListPlans(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list plans: %v", err)), nil
	}

	text, err := formatPlanList(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse plans: %v", err)), nil
	}

	return mcp.NewToolResultText(text), nil
}

// HandleValidateAccessToken checks a token without consuming a use.
func (h *Handlers) HandleValidateAccessToken(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	token := req.GetString("token", "")
	if token == "" {
		return mcp.NewToolResultError("token is required"), nil
	}

	raw, err := h.client.ValidateToken(ctx, token)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Token validation failed: %v", err)), nil
	}

	text, err := formatTokenValidation(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse validation: %v", err)), nil
	}

	return mcp.NewToolResultText(text), nil
}

// HandleAssessContentValue submits content for valuation.
func (h *Handlers) HandleAssessContentValue(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rawContent := req.GetArguments()["content"]
	content, ok := rawContent.(map[string]any)
	if !ok || len(content) == 0 {
		return mcp.NewToolResultError("content object is required"), nil
	}

	var trust *float64
	if v, ok := req.GetArguments()["publisher_trust_score"]; ok {
		if f, ok := v.(float64); ok {
			trust = &f
		}
	}

	raw, err := h.client.AssessContent(ctx, content, trust)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Assessment failed: %v", err)), nil
	}

	text, err := formatAssessment(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse assessment: %v", err)), nil
	}

	return mcp.NewToolResultText(text), nil
}

// HandleGetAccessStatistics reports user or platform statistics.
func (h *Handlers) HandleGetAccessStatistics(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	userID := req.GetString("user_id", "")

	var (
		raw json.RawMessage
		err error
	)
	if userID != "" {
		raw, err = h.client.GetUserStats(ctx, userID)
	} else {
		raw, err = h.client.GetGlobalStats(ctx)
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get statistics: %v", err)), nil
	}

	return mcp.NewToolResultText(formatJSON(raw)), nil
}

// --- Formatting helpers ---

func formatDecision(raw json.RawMessage) (string, error) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return "", err
	}

	granted, _ := m["granted"].(bool)
	var sb strings.Builder
	if granted {
		sb.WriteString("Access GRANTED\n")
		if v := getString(m, "level"); v != "" {
			fmt.Fprintf(&sb, "  Level: %s\n", v)
		}
		if v := getString(m, "tier"); v != "" {
			fmt.Fprintf(&sb, "  Subscription tier: %s\n", v)
		}
		if v := getString(m, "accessToken"); v != "" {
			fmt.Fprintf(&sb, "  Access token: %s\n", v)
		}
		if v := getString(m, "expiresAt"); v != "" {
			fmt.Fprintf(&sb, "  Expires: %s\n", formatTimestamp(v))
		}
		return sb.String(), nil
	}

	sb.WriteString("Access DENIED\n")
	if v := getString(m, "denialReason"); v != "" {
		fmt.Fprintf(&sb, "  Reason: %s\n", v)
	}
	if v := getString(m, "message"); v != "" {
		fmt.Fprintf(&sb, "  %s\n", v)
	}
	if upgrade, _ := m["upgradeRequired"].(bool); upgrade {
		if v := getString(m, "requiredTier"); v != "" {
			fmt.Fprintf(&sb, "  Upgrade to the %s tier for this content.\n", v)
		}
	}
	if ppv, _ := m["payPerViewAvailable"].(bool); ppv {
		if price, ok := getFloat(m, "payPerViewPrice"); ok {
			fmt.Fprintf(&sb, "  Pay-per-view available for $%.2f (use grant_temporary_access).\n", price)
		}
	}
	return sb.String(), nil
}

func formatGrant(raw json.RawMessage) (string, error) {
	var resp struct {
		Grant       map[string]any `json:"grant"`
		AccessToken string         `json:"accessToken"`
		ExpiresAt   string         `json:"expiresAt"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", err
	}
	if resp.Grant == nil {
		return "", fmt.Errorf("no grant in response: %s", string(raw))
	}

	var sb strings.Builder
	sb.WriteString("Temporary access granted\n")
	if v := getString(resp.Grant, "grantId"); v != "" {
		fmt.Fprintf(&sb, "  Grant ID: %s\n", v)
	}
	if v := getString(resp.Grant, "contentId"); v != "" {
		fmt.Fprintf(&sb, "  Content: %s\n", v)
	}
	if price, ok := getFloat(resp.Grant, "amountPaid"); ok {
		fmt.Fprintf(&sb, "  Paid: $%.2f\n", price)
	}
	if resp.AccessToken != "" {
		fmt.Fprintf(&sb, "  Access token: %s\n", resp.AccessToken)
	}
	if resp.ExpiresAt != "" {
		fmt.Fprintf(&sb, "  Expires: %s\n", formatTimestamp(resp.ExpiresAt))
	}
	sb.WriteString("\nUse the access token with check_content_access to read the content.")
	return sb.String(), nil
}

func formatSubscription(raw json.RawMessage, heading string) (string, error) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(heading + "\n")
	if v := getString(m, "userId"); v != "" {
		fmt.Fprintf(&sb, "  User: %s\n", v)
	}
	if v := getString(m, "planId"); v != "" {
		fmt.Fprintf(&sb, "  Plan: %s\n", v)
	}
	if v := getString(m, "tier"); v != "" {
		fmt.Fprintf(&sb, "  Tier: %s\n", v)
	}
	if v := getString(m, "status"); v != "" {
		fmt.Fprintf(&sb, "  Status: %s\n", v)
	}
	if v := getString(m, "renewalDate"); v != "" {
		fmt.Fprintf(&sb, "  Renews: %s\n", formatTimestamp(v))
	}
	if v, ok := m["contentAccessedCount"].(float64); ok && v > 0 {
		fmt.Fprintf(&sb, "  Content accessed: %.0f\n", v)
	}
	if v, ok := m["autoRenew"].(bool); ok {
		fmt.Fprintf(&sb, "  Auto-renew: %t\n", v)
	}
	return sb.String(), nil
}

func formatPlanList(raw json.RawMessage) (string, error) {
	var resp struct {
		Plans []map[string]any `json:"plans"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", err
	}
	if len(resp.Plans) == 0 {
		return "No plans available.", nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Available plans (%d):\n\n", len(resp.Plans))
	for i, p := range resp.Plans {
		fmt.Fprintf(&sb, "%d. %s (%s)\n", i+1, getString(p, "name"), getString(p, "id"))
		if monthly, ok := getFloat(p, "priceMonthly"); ok {
			if annual, aok := getFloat(p, "priceAnnual"); aok && annual > 0 {
				fmt.Fprintf(&sb, "   Price: $%.2f/month or $%.2f/year\n", monthly, annual)
			} else {
				fmt.Fprintf(&sb, "   Price: $%.2f/month\n", monthly)
			}
		}
		if limit, ok := getFloat(p, "contentLimit"); ok && limit > 0 {
			fmt.Fprintf(&sb, "   Content limit: %.0f items/month\n", limit)
		} else {
			sb.WriteString("   Content limit: unlimited\n")
		}
		if v := getString(p, "description"); v != "" {
			fmt.Fprintf(&sb, "   %s\n", v)
		}
		if i < len(resp.Plans)-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String(), nil
}

func formatTokenValidation(raw json.RawMessage) (string, error) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return "", err
	}

	valid, _ := m["valid"].(bool)
	var sb strings.Builder
	if valid {
		sb.WriteString("Token is VALID\n")
	} else {
		sb.WriteString("Token is INVALID\n")
		if v := getString(m, "reason"); v != "" {
			fmt.Fprintf(&sb, "  Reason: %s\n", v)
		}
	}
	if v := getString(m, "userId"); v != "" {
		fmt.Fprintf(&sb, "  User: %s\n", v)
	}
	if v := getString(m, "contentId"); v != "" {
		fmt.Fprintf(&sb, "  Content: %s\n", v)
	}
	if v := getString(m, "expiresAt"); v != "" {
		fmt.Fprintf(&sb, "  Expires: %s\n", formatTimestamp(v))
	}
	if used, ok := getFloat(m, "usageCount"); ok {
		if max, mok := getFloat(m, "maxUses"); mok && max > 0 {
			fmt.Fprintf(&sb, "  Uses: %.0f of %.0f\n", used, max)
		}
	}
	return sb.String(), nil
}

func formatAssessment(raw json.RawMessage) (string, error) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("Content assessment\n")
	if v := getString(m, "contentId"); v != "" {
		fmt.Fprintf(&sb, "  Content: %s\n", v)
	}
	if v := getString(m, "valueTier"); v != "" {
		fmt.Fprintf(&sb, "  Value tier: %s\n", v)
	}
	if v := getString(m, "recommendedAccessLevel"); v != "" {
		fmt.Fprintf(&sb, "  Recommended access level: %s\n", v)
	}
	if price, ok := getFloat(m, "recommendedPrice"); ok {
		fmt.Fprintf(&sb, "  Recommended pay-per-view price: $%.2f\n", price)
	}
	if q, ok := getFloat(m, "qualityScore"); ok {
		d, _ := getFloat(m, "demandScore")
		e, _ := getFloat(m, "exclusivityScore")
		fmt.Fprintf(&sb, "  Scores: quality %.1f | demand %.1f | exclusivity %.1f\n", q, d, e)
	}
	if views, ok := getFloat(m, "predictedViews"); ok {
		shares, _ := getFloat(m, "predictedShares")
		fmt.Fprintf(&sb, "  Predicted: %.0f views, %.0f shares\n", views, shares)
	}
	return sb.String(), nil
}

func formatJSON(raw json.RawMessage) string {
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, raw, "", "  "); err != nil {
		return string(raw)
	}
	return pretty.String()
}

// formatTimestamp renders RFC3339 timestamps in a compact human form,
// passing through anything it cannot parse.
func formatTimestamp(s string) string {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return s
	}
	return t.UTC().Format("2006-01-02 15:04 UTC")
}

// getString extracts a string value from a map, trying multiple key names.
func getString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if s, ok := v.(string); ok {
				return s
			}
		}
	}
	return ""
}

// getFloat extracts a float64 value from a map, trying multiple key names.
func getFloat(m map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			if f, ok := v.(float64); ok {
				return f, true
			}
		}
	}
	return 0, false
}
