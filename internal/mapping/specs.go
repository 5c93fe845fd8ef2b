package mapping

// rules is the full mapping table, in publish order. Adding a new secret
// is one entry here. Destination names match what the GitHub Actions
// workflows reference; source keys match the .env file the provisioning
// scripts write.
var rules = []Rule{
	{
		SourceKey:   "AZURE_AI_AGENT_ENDPOINT",
		Destination: "AZURE_AI_AGENT_ENDPOINT",
		Required:    true,
		Desc:        "Azure AI Agent service project endpoint",
	},
	{
		SourceKey:   "AZURE_AI_AGENT_MODEL_DEPLOYMENT_NAME",
		Destination: "AZURE_AI_AGENT_MODEL_DEPLOYMENT_NAME",
		Required:    true,
		Desc:        "model deployment backing the agent service",
	},
	{
		SourceKey:   "gpt_deployment",
		Destination: "GPT_DEPLOYMENT_NAME",
		Required:    true,
		Desc:        "GPT chat model deployment name",
	},
	{
		// Deliberate fan-out: the image pipeline reuses the chat
		// deployment value under a second secret name.
		SourceKey:   "gpt_deployment",
		Destination: "GPT_IMAGE_DEPLOYMENT_NAME",
		Required:    false,
		Desc:        "GPT image generation deployment name",
	},
	{
		SourceKey:   "interior_designer",
		Destination: "INTERIOR_DESIGNER_AGENT_ID",
		Required:    true,
		Desc:        "interior design agent id",
	},
	{
		SourceKey:   "inventory_agent",
		Destination: "INVENTORY_AGENT_ID",
		Required:    true,
		Desc:        "inventory lookup agent id",
	},
	{
		SourceKey:   "customer_loyalty",
		Destination: "CUSTOMER_LOYALTY_AGENT_ID",
		Required:    true,
		Desc:        "customer loyalty agent id",
	},
	{
		SourceKey:   "shopper",
		Destination: "SHOPPER_AGENT_ID",
		Required:    false,
		Desc:        "shopper personalization agent id",
	},
	{
		SourceKey:   "AZURE_OPENAI_ENDPOINT",
		Destination: "AZURE_OPENAI_ENDPOINT",
		Required:    true,
		Desc:        "Azure OpenAI resource endpoint",
	},
	{
		SourceKey:   "AZURE_OPENAI_API_KEY",
		Destination: "AZURE_OPENAI_API_KEY",
		Required:    false,
		Desc:        "Azure OpenAI API key (unused with managed identity)",
	},
	{
		SourceKey:   "AZURE_OPENAI_API_VERSION",
		Destination: "AZURE_OPENAI_API_VERSION",
		Required:    false,
		Desc:        "Azure OpenAI API version pin",
	},
	{
		SourceKey:   "COSMOS_DB_ENDPOINT",
		Destination: "COSMOS_DB_ENDPOINT",
		Required:    true,
		Desc:        "Cosmos DB account endpoint",
	},
	{
		SourceKey:   "COSMOS_DB_DATABASE",
		Destination: "COSMOS_DB_DATABASE",
		Required:    false,
		Desc:        "Cosmos DB database name",
	},
	{
		SourceKey:   "COSMOS_DB_CONTAINER",
		Destination: "COSMOS_DB_CONTAINER",
		Required:    false,
		Desc:        "Cosmos DB chat history container",
	},
	{
		SourceKey:   "AZURE_CLIENT_ID",
		Destination: "AZURE_CLIENT_ID",
		Required:    true,
		Desc:        "service principal client id",
	},
	{
		SourceKey:   "AZURE_CLIENT_SECRET",
		Destination: "AZURE_CLIENT_SECRET",
		Required:    true,
		Desc:        "service principal client secret",
	},
	{
		SourceKey:   "AZURE_SUBSCRIPTION_ID",
		Destination: "AZURE_SUBSCRIPTION_ID",
		Required:    true,
		Desc:        "target subscription id",
	},
	{
		SourceKey:   "AZURE_TENANT_ID",
		Destination: "AZURE_TENANT_ID",
		Required:    true,
		Desc:        "Entra tenant id",
	},
	{
		SourceKey:   "AZURE_RESOURCE_GROUP",
		Destination: "AZURE_RESOURCE_GROUP",
		Required:    false,
		Desc:        "resource group holding the deployment",
	},
	{
		SourceKey:   "AZURE_CONTAINER_REGISTRY",
		Destination: "ACR_NAME",
		Required:    false,
		Desc:        "container registry for workflow image pushes",
	},
	{
		SourceKey:   "AZURE_WEBAPP_NAME",
		Destination: "AZURE_WEBAPP_NAME",
		Required:    false,
		Desc:        "App Service site receiving the deploy",
	},
}
