package user

import "sessionbot/internal/models"

type SaveUserInput struct {
	User *models.User
}

type GetUserInput struct {
	UserID int64
}

type GetUsersInput struct {
	UserIDs []int64
}

type BlockUserInput struct {
	UserID int64
	Reason string
}

type UnblockUserInput struct {
	UserID int64
}

type ListBlockedUsersInput struct {
}
