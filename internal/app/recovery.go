package app

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/bft-labs/stereosync/internal/domain"
	"github.com/bft-labs/stereosync/internal/ports"
	"github.com/bft-labs/stereosync/internal/timeutil"
)

// DefaultRestartDelay is the pause after stopping and after relaunching the driver.
const DefaultRestartDelay = 5 * time.Second

// RestartEventEmitter is called after every triggered restart.
type RestartEventEmitter interface {
	OnRestart(event domain.RestartEvent)
}

// RecoveryController restarts the camera driver when the watchdog reports
// a stall. Cooldown arbitration lives in syncState; the controller only
// performs the side effects of the Armed to Resetting transition.
type RecoveryController struct {
	driverName   string
	restartDelay time.Duration

	state   *syncState
	wall    timeutil.Clock
	driver  ports.DriverController
	info    ports.InfoPublisher
	status  ports.StatusRepository
	logger  ports.Logger
	emitter RestartEventEmitter

	restarts atomic.Uint64
}

func newRecoveryController(
	driverName string,
	restartDelay time.Duration,
	state *syncState,
	wall timeutil.Clock,
	driver ports.DriverController,
	info ports.InfoPublisher,
	status ports.StatusRepository,
	logger ports.Logger,
	emitter RestartEventEmitter,
) *RecoveryController {
	if restartDelay < 0 {
		restartDelay = 0
	}
	return &RecoveryController{
		driverName:   driverName,
		restartDelay: restartDelay,
		state:        state,
		wall:         wall,
		driver:       driver,
		info:         info,
		status:       status,
		logger:       logger,
		emitter:      emitter,
	}
}

// Trigger runs the restart sequence for a stall detected at logical time now.
// It blocks for the two restart delays unless ctx is canceled.
func (r *RecoveryController) Trigger(ctx context.Context, now time.Time, staleness time.Duration) domain.RestartEvent {
	event := domain.RestartEvent{
		ID:          uuid.NewString(),
		LogicalTime: now,
		WallTime:    r.wall.Now(),
		Staleness:   staleness,
		Driver:      r.driverName,
	}

	r.logger.Warn("no sync, resetting driver",
		ports.Err(domain.ErrStreamStalled),
		ports.Seconds("staleness_s", staleness),
		ports.String("driver", r.driverName),
		ports.String("event_id", event.ID),
	)

	if r.info != nil {
		if err := r.info.PublishInfo(ctx, event.Message()); err != nil {
			r.logger.Error("publish restart info", ports.Err(err))
		}
	}

	if ctx.Err() == nil {
		r.restartDriver(ctx)
	}

	r.state.CompleteRecovery(now)
	r.restarts.Add(1)

	r.persist(context.WithoutCancel(ctx), event)
	if r.emitter != nil {
		r.emitter.OnRestart(event)
	}
	return event
}

// restartDriver stops and relaunches the driver. Command failures are logged
// and otherwise ignored; the next watchdog cycle detects a failed restart.
func (r *RecoveryController) restartDriver(ctx context.Context) {
	if err := r.driver.Stop(ctx); err != nil {
		r.logger.Error("stop driver", ports.Err(err), ports.String("driver", r.driverName))
	}
	if err := r.wall.Sleep(ctx, r.restartDelay); err != nil {
		return
	}

	if err := r.driver.Start(ctx); err != nil {
		r.logger.Error("start driver", ports.Err(err), ports.String("driver", r.driverName))
	}
	_ = r.wall.Sleep(ctx, r.restartDelay)
}

func (r *RecoveryController) persist(ctx context.Context, event domain.RestartEvent) {
	if r.status == nil {
		return
	}
	st, err := r.status.Load(ctx)
	if err != nil {
		r.logger.Error("failed to load status", ports.Err(err))
	}
	st.Record(event)
	if err := r.status.Save(ctx, st); err != nil {
		r.logger.Error("failed to save status", ports.Err(err))
	}
}

// Restarts returns the number of restarts triggered by this controller.
func (r *RecoveryController) Restarts() uint64 { return r.restarts.Load() }
