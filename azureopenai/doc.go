// Package azureopenai provides a completion provider for Azure OpenAI and the
// public OpenAI API, built on the Azure SDK's azopenai client.
//
// The package registers two providers:
//
//   - "azure-openai": an Azure OpenAI resource, authenticated by API key or
//     by DefaultAzureCredential (Options["azure_identity"] = true)
//   - "openai": api.openai.com or a compatible endpoint
//
// Usage:
//
//	client, err := provider.New("azure-openai", provider.Config{
//	    Endpoint:   "https://my-resource.openai.azure.com",
//	    Deployment: "gpt-35-turbo",
//	    APIKeyEnv:  "AZURE_OPENAI_API_KEY",
//	})
//
// Request.Model names the deployment to call; Config.Deployment is used when
// it is empty. Unset connection fields fall back to AZURE_OPENAI_ENDPOINT,
// AZURE_OPENAI_API_KEY, AZURE_OPENAI_DEPLOYMENT, OPENAI_API_KEY and
// OPENAI_BASE_URL.
package azureopenai
