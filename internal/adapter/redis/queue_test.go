package redis

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	domainErrors "github.com/polkiloo/orderservice/internal/domain/errors"
	"github.com/polkiloo/orderservice/internal/domain/messaging"
)

type fakeStream struct {
	groupErr error

	added   []map[string]any
	addedTo []string
	addErr  error

	claimed  []redis.XMessage
	claimErr error
	claimArg *redis.XAutoClaimArgs

	read    []redis.XStream
	readErr error
	readArg *redis.XReadGroupArgs

	ackCount int64
	ackErr   error
	acked    []string
	deleted  []string
}

func (f *fakeStream) XGroupCreateMkStream(ctx context.Context, _, _, _ string) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx)
	if f.groupErr != nil {
		cmd.SetErr(f.groupErr)
	} else {
		cmd.SetVal("OK")
	}
	return cmd
}

func (f *fakeStream) XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx)
	if f.addErr != nil {
		cmd.SetErr(f.addErr)
		return cmd
	}
	f.added = append(f.added, a.Values.(map[string]any))
	f.addedTo = append(f.addedTo, a.Stream)
	cmd.SetVal("1700000000000-0")
	return cmd
}

func (f *fakeStream) XAutoClaim(ctx context.Context, a *redis.XAutoClaimArgs) *redis.XAutoClaimCmd {
	f.claimArg = a
	cmd := redis.NewXAutoClaimCmd(ctx)
	if f.claimErr != nil {
		cmd.SetErr(f.claimErr)
		return cmd
	}
	cmd.SetVal(f.claimed, "0-0")
	return cmd
}

func (f *fakeStream) XReadGroup(ctx context.Context, a *redis.XReadGroupArgs) *redis.XStreamSliceCmd {
	f.readArg = a
	cmd := redis.NewXStreamSliceCmd(ctx)
	if f.readErr != nil {
		cmd.SetErr(f.readErr)
		return cmd
	}
	cmd.SetVal(f.read)
	return cmd
}

func (f *fakeStream) XAck(ctx context.Context, _, _ string, ids ...string) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx)
	if f.ackErr != nil {
		cmd.SetErr(f.ackErr)
		return cmd
	}
	f.acked = append(f.acked, ids...)
	cmd.SetVal(f.ackCount)
	return cmd
}

func (f *fakeStream) XDel(ctx context.Context, _ string, ids ...string) *redis.IntCmd {
	f.deleted = append(f.deleted, ids...)
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(int64(len(ids)))
	return cmd
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func entry(id, body string) redis.XMessage {
	return redis.XMessage{ID: id, Values: map[string]any{bodyField: body}}
}

func TestEnsureGroup(t *testing.T) {
	client := &fakeStream{groupErr: errors.New("BUSYGROUP Consumer Group name already exists")}
	q := NewQueue(client, "orders.queue", "order-service", "c1", time.Second, discardLogger())
	if err := q.EnsureGroup(context.Background()); err != nil {
		t.Fatalf("expected existing group to be accepted, got %v", err)
	}

	client.groupErr = errors.New("WRONGTYPE")
	if err := q.EnsureGroup(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestEnqueue(t *testing.T) {
	client := &fakeStream{}
	q := NewQueue(client, "orders.queue", "order-service", "c1", time.Second, discardLogger())

	id, err := q.Enqueue(context.Background(), "payload")
	if err != nil || id == "" {
		t.Fatalf("unexpected result id=%q err=%v", id, err)
	}
	if len(client.added) != 1 || client.added[0][bodyField] != "payload" {
		t.Fatalf("unexpected entries %v", client.added)
	}

	client.addErr = errors.New("OOM")
	if _, err := q.Enqueue(context.Background(), "payload"); err == nil {
		t.Fatal("expected error")
	}
}

func TestReceiveReadsNewEntries(t *testing.T) {
	client := &fakeStream{read: []redis.XStream{{Stream: "orders.queue", Messages: []redis.XMessage{entry("1-0", "a"), entry("2-0", "b")}}}}
	q := NewQueue(client, "orders.queue", "order-service", "c1", 30*time.Second, discardLogger())

	msgs, err := q.Receive(context.Background(), messaging.ReceiveOptions{MaxMessages: 5, WaitTime: 2 * time.Second})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(msgs) != 2 || msgs[0].Body != "a" || msgs[1].ReceiptHandle != "2-0" {
		t.Fatalf("unexpected messages %+v", msgs)
	}
	if client.claimArg.MinIdle != 30*time.Second || client.claimArg.Count != 5 {
		t.Fatalf("unexpected claim args %+v", client.claimArg)
	}
	if client.readArg.Block != 2*time.Second || client.readArg.Count != 5 || client.readArg.Streams[1] != ">" {
		t.Fatalf("unexpected read args %+v", client.readArg)
	}
}

func TestReceivePrefersExpiredEntries(t *testing.T) {
	client := &fakeStream{
		claimed: []redis.XMessage{entry("1-0", "old")},
		read:    []redis.XStream{{Messages: []redis.XMessage{entry("5-0", "new")}}},
	}
	q := NewQueue(client, "orders.queue", "order-service", "c1", time.Second, discardLogger())

	msgs, err := q.Receive(context.Background(), messaging.ReceiveOptions{MaxMessages: 3, WaitTime: time.Second})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(msgs) != 2 || msgs[0].Body != "old" || msgs[1].Body != "new" {
		t.Fatalf("unexpected messages %+v", msgs)
	}
	if client.readArg.Block >= 0 {
		t.Fatalf("expected non-blocking read after claim, got %v", client.readArg.Block)
	}
	if client.readArg.Count != 2 {
		t.Fatalf("expected remaining count 2, got %d", client.readArg.Count)
	}
}

func TestReceiveStopsAtLimitAfterClaim(t *testing.T) {
	client := &fakeStream{claimed: []redis.XMessage{entry("1-0", "a"), entry("2-0", "b")}}
	q := NewQueue(client, "orders.queue", "order-service", "c1", time.Second, discardLogger())

	msgs, err := q.Receive(context.Background(), messaging.ReceiveOptions{MaxMessages: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(msgs) != 2 || client.readArg != nil {
		t.Fatalf("expected claim only, got %d messages read=%v", len(msgs), client.readArg)
	}
}

func TestReceiveTimeoutAndErrors(t *testing.T) {
	client := &fakeStream{readErr: redis.Nil}
	q := NewQueue(client, "orders.queue", "order-service", "c1", time.Second, discardLogger())

	msgs, err := q.Receive(context.Background(), messaging.ReceiveOptions{MaxMessages: 0})
	if err != nil || len(msgs) != 0 {
		t.Fatalf("expected empty result on timeout, got %v err=%v", msgs, err)
	}
	if client.readArg.Count != 1 || client.readArg.Block >= 0 {
		t.Fatalf("expected single non-blocking read, got %+v", client.readArg)
	}

	client.claimErr = errors.New("NOGROUP")
	if _, err := q.Receive(context.Background(), messaging.ReceiveOptions{MaxMessages: 1}); err == nil {
		t.Fatal("expected claim error")
	}

	client.claimErr = nil
	client.readErr = errors.New("connection reset")
	if _, err := q.Receive(context.Background(), messaging.ReceiveOptions{MaxMessages: 1}); err == nil {
		t.Fatal("expected read error")
	}
}

func TestDelete(t *testing.T) {
	client := &fakeStream{ackCount: 1}
	q := NewQueue(client, "orders.queue", "order-service", "c1", time.Second, discardLogger())

	if err := q.Delete(context.Background(), "1-0"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(client.acked) != 1 || len(client.deleted) != 1 || client.deleted[0] != "1-0" {
		t.Fatalf("expected ack and delete, got acked=%v deleted=%v", client.acked, client.deleted)
	}

	client.ackCount = 0
	if err := q.Delete(context.Background(), "2-0"); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found for non-pending entry, got %v", err)
	}

	client.ackErr = errors.New("down")
	if err := q.Delete(context.Background(), "3-0"); err == nil {
		t.Fatal("expected ack error")
	}
}

func TestReceiveMovesEntriesWithoutBodyToDeadLetter(t *testing.T) {
	client := &fakeStream{
		claimed: []redis.XMessage{{ID: "1-0", Values: map[string]any{"payload": "x"}}},
		read: []redis.XStream{{Stream: "orders.queue", Messages: []redis.XMessage{
			entry("2-0", "ok"),
			{ID: "3-0", Values: map[string]any{}},
		}}},
		ackCount: 1,
	}
	q := NewQueue(client, "orders.queue", "order-service", "c1", time.Second, discardLogger())

	msgs, err := q.Receive(context.Background(), messaging.ReceiveOptions{MaxMessages: 5})
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	if len(msgs) != 1 || msgs[0].ID != "2-0" || msgs[0].Body != "ok" {
		t.Fatalf("expected only the readable entry, got %+v", msgs)
	}

	if len(client.addedTo) != 2 || client.addedTo[0] != "orders.queue"+DeadLetterSuffix {
		t.Fatalf("expected entries copied to dead-letter stream, got %v", client.addedTo)
	}
	if client.added[0]["source_id"] != "1-0" || client.added[0]["payload"] != "x" {
		t.Fatalf("expected original values and source id, got %v", client.added[0])
	}
	if len(client.acked) != 2 || len(client.deleted) != 2 {
		t.Fatalf("expected malformed entries acked and deleted, acked=%v deleted=%v", client.acked, client.deleted)
	}
}

func TestReceiveKeepsEntryPendingWhenDeadLetterFails(t *testing.T) {
	client := &fakeStream{
		claimed: []redis.XMessage{{ID: "1-0", Values: map[string]any{}}},
		addErr:  errors.New("readonly replica"),
	}
	q := NewQueue(client, "orders.queue", "order-service", "c1", time.Second, discardLogger())

	msgs, err := q.Receive(context.Background(), messaging.ReceiveOptions{MaxMessages: 1})
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	if len(msgs) != 0 {
		t.Fatalf("expected no deliverable messages, got %+v", msgs)
	}
	if len(client.acked) != 0 || len(client.deleted) != 0 {
		t.Fatal("expected entry to stay pending")
	}
}
