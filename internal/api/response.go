// Package api はフィーチャー間で共有するHTTPレスポンス型を定義します。
package api

// ErrorResponse はエラー時の共通レスポンスです。
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse は本文を持たない成功レスポンスです。
type MessageResponse struct {
	Message string `json:"message"`
}

// TokenResponse はログイン成功時のレスポンスです。
type TokenResponse struct {
	Token string `json:"token"`
}
