package hostcheck

// installInstructions returns platform-specific Ollama install guidance.
func installInstructions(goos string) string {
	switch goos {
	case "darwin":
		return "Install Ollama with 'brew install ollama' or download it from https://ollama.com/download, then run 'ollama serve'."
	case "windows":
		return "Download the Ollama installer from https://ollama.com/download and run it, then start Ollama from the Start menu."
	default:
		return "Install Ollama with 'curl -fsSL https://ollama.com/install.sh | sh', then run 'ollama serve'."
	}
}
