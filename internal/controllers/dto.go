package controllers

import "collecthub-backend/internal/policy"

type MessageResponse struct {
	Type string `json:"type"`
	Msg  string `json:"msg,omitempty"`
}

type PermissionResponse struct {
	Type       string      `json:"type"`
	Msg        string      `json:"msg,omitempty"`
	Permission policy.Tier `json:"permission"`
}

type SignUpRequest struct {
	Nickname string `json:"nickname"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Lang     string `json:"lang"`
	Theme    string `json:"theme"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ResetPasswordRequest struct {
	UserId   uint   `json:"userId"`
	Token    string `json:"token"`
	Password string `json:"password"`
}

type IdsRequest struct {
	Ids []uint `json:"ids"`
}

type TopicsRequest struct {
	Topics []string `json:"topics"`
}

type CreateCommentRequest struct {
	Text string `json:"text"`
}
