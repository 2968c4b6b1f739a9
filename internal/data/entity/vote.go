package entity

import "github.com/google/uuid"

type VoteDirection string

const (
	VoteUp   VoteDirection = "up"
	VoteDown VoteDirection = "down"
)

type ReportVote struct {
	BaseSimple
	ReportID  uuid.UUID     `db:"report_id"`
	UserID    uuid.UUID     `db:"user_id"`
	Direction VoteDirection `db:"direction"`
}
