// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem.
//
// Adapters:
//   - StateStore: TOML-backed runtime state, such as the chat loop cursor
//   - PromptStore: user-editable prompt templates under ~/.paddock/prompts
package file
