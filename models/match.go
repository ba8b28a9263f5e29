package models

type MatchRecord struct {
	MatchID       string `dynamodbav:"matchId" json:"matchId"`             // Unique matchId
	ParticipantID string `dynamodbav:"participantId" json:"participantId"` // The user who requested the match
	CounterpartID string `dynamodbav:"counterpartId" json:"counterpartId"` // Real partner or synthetic counterpart
	IsFake        bool   `dynamodbav:"isFake" json:"isFake"`               // Synthetic match flag
	StartTime     string `dynamodbav:"startTime" json:"startTime"`         // RFC3339 timestamp of creation
	EndTime       string `dynamodbav:"endTime,omitempty" json:"endTime,omitempty"`
	DurationMs    int64  `dynamodbav:"durationMs,omitempty" json:"durationMs,omitempty"`
}

// MatchRecordsTable is the DynamoDB table name for match history
const MatchRecordsTable = "MatchRecords"
