package handler

import (
	"chatrelay/internal/app/chat"
	"chatrelay/internal/app/directory"
	"chatrelay/internal/configs"
)

// AppDeps bundles the long-lived collaborators shared by the HTTP handlers.
type AppDeps struct {
	Hub       *chat.Hub
	Directory *directory.Directory
	Config    *configs.AppConfig
}
