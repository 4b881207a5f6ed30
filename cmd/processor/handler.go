package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/airbusgeo/geocube-insar/common"
	"github.com/airbusgeo/geocube-insar/processor"
	"github.com/airbusgeo/geocube-insar/service"
	"github.com/airbusgeo/geocube-insar/service/log"
	"github.com/airbusgeo/geocube-insar/snaphu"
	"github.com/airbusgeo/geocube/interface/messaging"
	"go.uber.org/zap"
)

// jobHandler processes the merge jobs and publishes their results
type jobHandler struct {
	storage        service.Storage
	eventPublisher messaging.Publisher
	jobs           *jobTracker
	workdir        string
	maxTries       int
	dateLayout     string
}

func (h *jobHandler) handle(ctx context.Context, msg *messaging.Message) (err error) {
	h.jobs.start()
	defer h.jobs.stop()
	ctx = log.With(ctx, "msgID", msg.ID)
	log.Logger(log.With(ctx, "body", string(msg.Data))).Sugar().Debugf("message %s try %d", msg.ID, msg.TryCount)
	status := common.StatusRETRY
	job := common.MergeJob{}
	message := ""
	kind := ""
	if err := json.Unmarshal(msg.Data, &job); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	} else if job.ID == 0 {
		return fmt.Errorf("invalid payload: %d", job.ID)
	}

	defer func() {
		if err != nil && service.Temporary(err) {
			log.Logger(ctx).Warn("job temporary failure", zap.Error(err))
			return
		}
		if err != nil {
			log.Logger(ctx).Warn("job failed", zap.Error(err))
			message = err.Error()
			if k, ok := snaphu.KindOf(err); ok {
				kind = k.String()
			}
		}
		res := common.Result{
			Type:    common.ResultTypeMerge,
			ID:      job.ID,
			Status:  status,
			Kind:    kind,
			Message: message,
		}
		resb, e := json.Marshal(res)
		if e != nil {
			err = service.MakeTemporary(fmt.Errorf("marshal: %w", e))
		} else if e := h.eventPublisher.Publish(ctx, resb); e != nil {
			err = service.MakeTemporary(fmt.Errorf("failed to enqueue result: %w", e))
		}
	}()
	if msg.TryCount > h.maxTries {
		return fmt.Errorf("too many retries")
	}

	if job.DateLayout == "" {
		job.DateLayout = h.dateLayout
	}
	if err = processor.ProcessMerge(ctx, h.storage, job, h.workdir); err != nil {
		if msg.TryCount >= h.maxTries {
			return fmt.Errorf("too many retries: %w", err)
		}
		if service.Fatal(err) {
			status = common.StatusFAILED
		}
		return err
	}
	log.Logger(ctx).Sugar().Infof("successfully merged pair %s/%s", job.AOI, job.Name)
	status = common.StatusDONE
	return
}
