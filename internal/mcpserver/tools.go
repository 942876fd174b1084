package mcpserver

import "github.com/mark3labs/mcp-go/mcp"

// Tool definitions for the Pressgate MCP server.
// Descriptions are what the LLM reads to decide which tool to use.

var ToolCheckContentAccess = mcp.NewTool("check_content_access",
	mcp.WithDescription(
		"Check whether a user can access a piece of premium content. "+
			"Grants return a time-limited access token; denials explain why and "+
			"include upgrade or pay-per-view options."),
	mcp.WithString("user_id",
		mcp.Required(),
		mcp.Description("The user requesting access")),
	mcp.WithString("content_id",
		mcp.Required(),
		mcp.Description("The content item being requested")),
	mcp.WithString("level",
		mcp.Description("Required access level for the content (default 'premium')"),
		mcp.Enum("public", "registered", "premium", "enterprise", "restricted")),
	mcp.WithString("access_token",
		mcp.Description("Previously issued access token, if the user has one")),
)

var ToolGrantTemporaryAccess = mcp.NewTool("grant_temporary_access",
	mcp.WithDescription(
		"Purchase temporary pay-per-view access to a single content item without a subscription. "+
			"Payment is verified before the grant is created; the result includes a "+
			"time-limited access token."),
	mcp.WithString("user_id",
		mcp.Required(),
		mcp.Description("The user purchasing access")),
	mcp.WithString("content_id",
		mcp.Required(),
		mcp.Description("The content item to unlock")),
	mcp.WithNumber("duration_seconds",
		mcp.Description("How long access lasts, 60 to 86400 seconds (default 3600)")),
	mcp.WithString("payment_token",
		mcp.Required(),
		mcp.Description("Payment authorization token from the payment provider")),
	mcp.WithNumber("amount_paid",
		mcp.Required(),
		mcp.Description("Amount paid in USD (e.g. 1.99)")),
)

var ToolCreateSubscription = mcp.NewTool("create_subscription",
	mcp.WithDescription(
		"Subscribe a user to a plan. Users with an active subscription cannot "+
			"subscribe again until they cancel. Use list_subscription_plans to see "+
			"available plans first."),
	mcp.WithString("user_id",
		mcp.Required(),
		mcp.Description("The user to subscribe")),
	mcp.WithString("plan_id",
		mcp.Required(),
		mcp.Description("Plan to subscribe to (e.g. 'plan_free', 'plan_premium', 'plan_enterprise')")),
	mcp.WithString("payment_method",
		mcp.Description("Payment method reference (required for paid plans)")),
	mcp.WithString("billing_period",
		mcp.Description("Billing cadence: 'monthly' or 'annual' (default monthly)"),
		mcp.Enum("monthly", "annual")),
)

var ToolGetUserSubscription = mcp.NewTool("get_user_subscription",
	mcp.WithDescription(
		"Get a user's current subscription: tier, status, billing period, "+
			"dates, and how much content they have accessed this period."),
	mcp.WithString("user_id",
		mcp.Required(),
		mcp.Description("The user whose subscription to look up")),
)

var ToolCancelSubscription = mcp.NewTool("cancel_subscription",
	mcp.WithDescription(
		"Cancel a user's subscription. The user keeps free-tier access afterwards; "+
			"cancelling twice is an error."),
	mcp.WithString("user_id",
		mcp.Required(),
		mcp.Description("The user whose subscription to cancel")),
)

var ToolListSubscriptionPlans = mcp.NewTool("list_subscription_plans",
	mcp.WithDescription(
		"List the available subscription plans with pricing, content limits, and features."),
)

var ToolValidateAccessToken = mcp.NewTool("validate_access_token",
	mcp.WithDescription(
		"Check whether an access token is still valid without consuming a use. "+
			"Shows the bound user, content, expiry, and remaining uses."),
	mcp.WithString("token",
		mcp.Required(),
		mcp.Description("The access token to validate (e.g. 'tok_...')")),
)

var ToolAssessContentValue = mcp.NewTool("assess_content_value",
	mcp.WithDescription(
		"Score a content item's quality, demand, and exclusivity to recommend a "+
			"value tier, required access level, and pay-per-view price. "+
			"Results are cached per content ID."),
	mcp.WithObject("content",
		mcp.Required(),
		mcp.Description("Content metadata: {\"contentId\": \"...\", \"contentType\": \"article\", \"text\": \"...\", \"publishDate\": \"2026-08-01T00:00:00Z\", \"factChecked\": true, \"hasMultimedia\": false, \"verificationLevel\": \"double-sourced\", \"engagementScore\": 7.5, \"wordCount\": 1200}")),
	mcp.WithNumber("publisher_trust_score",
		mcp.Description("Publisher trust score from 0 to 10 (default 5.0)")),
)

var ToolGetAccessStatistics = mcp.NewTool("get_access_statistics",
	mcp.WithDescription(
		"Get access statistics. With a user_id, returns that user's tier, usage, "+
			"tokens, and spend; without one, returns platform-wide totals."),
	mcp.WithString("user_id",
		mcp.Description("User to report on; omit for platform-wide statistics")),
)
