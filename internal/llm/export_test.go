package llm

var (
	ValidateResponse   = validateResponse
	BuildGeminiSchema  = buildGeminiSchema
	ResolveGeminiModel = func(name string) string { return resolveModel(name, geminiModels) }
)
