package config

// SampleConfig returns a fully commented configuration file
func SampleConfig() string {
	return `# mclogsum configuration
#
# Search order (later entries are overridden by earlier ones):
#   ./.mclogsum.yaml
#   ~/.config/mclogsum/config.yaml
#   /etc/mclogsum/config.yaml
# MCLOGSUM_* environment variables override every file.
version: "1.0"

keywords:
  # Extra literals reported under "Keywords", pipe-delimited.
  # Also read from CUSTOM_KEYWORDS.
  custom: ""

rules:
  # YAML rule files appended after the built-in catalogue.
  # Each rule has id, keywords, logic (one_of|all_of) and reason.
  files: []

ai:
  provider: gemini
  model: gemini-2.5-flash
  # Base URL of the Gemini API or a proxy in front of it.
  # Also read from GEMINI_PROXY_TARGET.
  proxy_target: https://gemini-proxy.keyikai.me/
  # Leave empty to disable AI features. Prefer GEMINI_API_KEY or
  # MCLOGSUM_AI_API_KEY over storing the key here.
  api_key: ""
  timeout: 60s
  max_retries: 2
  # Characters of the log tail sent to the model, 0 sends everything.
  max_log_chars: 0

server:
  address: ":3000"
  body_limit: 10M
  # Directory served at / (e.g. the web front end). Empty disables it.
  static_dir: ""
  cors_origins: ["*"]
  shutdown_timeout: 10s

# Uploads are staged in storage.temp_dir and removed after reading.
# Defaults to mclogsum under the system temp directory.
# storage:
#   temp_dir: /var/tmp/mclogsum

output:
  default_format: text # text, json, markdown
  color_mode: auto     # auto, always, never
  verbose: false
  log_format: console  # console, json

analysis:
  # Budget for one log including the AI call.
  timeout: 90s
  # Files diagnosed in parallel.
  jobs: 4
  max_file_size: 10485760

watch:
  extensions: [".log", ".txt"]
  debounce: 500ms
`
}

// MinimalSampleConfig returns a compact configuration file
func MinimalSampleConfig() string {
	return `version: "1.0"
keywords:
  custom: ""
ai:
  proxy_target: https://gemini-proxy.keyikai.me/
output:
  default_format: text
`
}
