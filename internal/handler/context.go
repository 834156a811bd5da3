package handler

type ContextKey string

var (
	SubCtxKey   ContextKey = "sub"
	UserInfoCtx ContextKey = "userInfo"
)
