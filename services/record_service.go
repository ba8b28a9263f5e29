package services

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"vidmatch_server/models"
)

// MatchRecorder persists match lifecycle events to the durable store.
// Persistence is best-effort: failures are logged and swallowed, never
// surfaced to the matching path.
type MatchRecorder interface {
	RecordStart(ctx context.Context, record models.MatchRecord)
	RecordEnd(ctx context.Context, matchID string, endTime time.Time, duration time.Duration)
}

// RecordService is the DynamoDB-backed MatchRecorder.
type RecordService struct {
	Dynamo *DynamoService
}

// RecordStart writes the durable copy of a freshly created match.
func (rs *RecordService) RecordStart(ctx context.Context, record models.MatchRecord) {
	if err := rs.Dynamo.PutItem(ctx, models.MatchRecordsTable, record); err != nil {
		log.Printf("Failed to record match start for %s: %v", record.MatchID, err)
	}
}

// RecordEnd sets the end time and duration on an existing match record.
func (rs *RecordService) RecordEnd(ctx context.Context, matchID string, endTime time.Time, duration time.Duration) {
	key := map[string]types.AttributeValue{
		"matchId": &types.AttributeValueMemberS{Value: matchID},
	}
	values := map[string]types.AttributeValue{
		":endTime":    &types.AttributeValueMemberS{Value: endTime.UTC().Format(time.RFC3339)},
		":durationMs": &types.AttributeValueMemberN{Value: strconv.FormatInt(duration.Milliseconds(), 10)},
	}

	_, err := rs.Dynamo.UpdateItem(ctx, models.MatchRecordsTable,
		"SET endTime = :endTime, durationMs = :durationMs", key, values, nil)
	if err != nil {
		log.Printf("Failed to record match end for %s: %v", matchID, err)
	}
}

// ListMatchRecords returns every stored match record for the admin
// reporting surface.
func (rs *RecordService) ListMatchRecords(ctx context.Context) ([]models.MatchRecord, error) {
	var records []models.MatchRecord
	if err := rs.Dynamo.ScanAllItems(ctx, models.MatchRecordsTable, &records); err != nil {
		return nil, fmt.Errorf("failed to list match records: %w", err)
	}
	return records, nil
}
