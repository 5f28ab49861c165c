// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem.
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage under the vox home
//   - PromptStore: user-editable prompt templates
//
// LoadEnv and ApplyEnvOverrides read API keys from .env files and the environment.
package file
