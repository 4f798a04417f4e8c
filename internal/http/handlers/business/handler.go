package business

import "github.com/rajabpour4097/faydo/internal/provider"

// Handler 商家端接口处理器
type Handler struct {
	*provider.Container
}

func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
