package notification

import (
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/iotaledger/hive.go/logger"
	"github.com/iotaledger/hive.go/workerpool"
	zmq "github.com/pebbe/zmq4"
)

// region ZMQPublisher /////////////////////////////////////////////////////////////////////////////////////////////////

// ZMQPublisher sends every notification as a single frame on a ZeroMQ PUB socket. Sending happens on a worker pool
// with a bounded queue and never waits for subscribers. Notifications that do not fit into the queue are dropped.
type ZMQPublisher struct {
	socket      *zmq.Socket
	socketMutex sync.Mutex
	workerPool  *workerpool.WorkerPool
	log         *logger.Logger

	optsWorkerCount int
	optsQueueSize   int
}

// NewZMQPublisher binds a PUB socket to the given address, e.g. "tcp://*:5556".
func NewZMQPublisher(bindAddress string, opts ...ZMQOption) (*ZMQPublisher, error) {
	publisher := &ZMQPublisher{
		optsWorkerCount: 1,
		optsQueueSize:   1000,
	}
	for _, opt := range opts {
		opt(publisher)
	}
	if publisher.log == nil {
		publisher.log = logger.NewLogger("ZeroMQ")
	}

	socket, err := zmq.NewSocket(zmq.PUB)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create socket")
	}
	if err = socket.SetLinger(0); err != nil {
		socket.Close()
		return nil, errors.Wrap(err, "failed to configure socket")
	}
	if err = socket.Bind(bindAddress); err != nil {
		socket.Close()
		return nil, errors.Wrapf(err, "failed to bind to %s", bindAddress)
	}
	publisher.socket = socket

	publisher.workerPool = workerpool.New(func(task workerpool.Task) {
		publisher.send(task.Param(0).(string))

		task.Return(nil)
	}, workerpool.WorkerCount(publisher.optsWorkerCount), workerpool.QueueSize(publisher.optsQueueSize))
	publisher.workerPool.Start()

	return publisher, nil
}

// Publish queues the notification for sending. It drops the notification if the queue is full.
func (z *ZMQPublisher) Publish(topic string, args ...interface{}) {
	line := Line(topic, args...)

	if _, added := z.workerPool.TrySubmit(line); !added {
		z.log.Debugf("dropped notification '%s': queue is full", line)
	}
}

// Shutdown stops the worker pool and closes the socket.
func (z *ZMQPublisher) Shutdown() error {
	z.workerPool.StopAndWait()

	z.socketMutex.Lock()
	defer z.socketMutex.Unlock()

	return z.socket.Close()
}

func (z *ZMQPublisher) send(line string) {
	z.socketMutex.Lock()
	defer z.socketMutex.Unlock()

	if _, err := z.socket.Send(line, zmq.DONTWAIT); err != nil {
		z.log.Debugf("failed to send notification '%s': %s", line, err)
	}
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region ZMQOptions ///////////////////////////////////////////////////////////////////////////////////////////////////

// ZMQOption is a function setting an option of the ZMQPublisher.
type ZMQOption func(*ZMQPublisher)

// WithWorkerCount sets the number of goroutines that write to the socket. More than one worker does not preserve the
// order of the notifications.
func WithWorkerCount(count int) ZMQOption {
	return func(z *ZMQPublisher) {
		z.optsWorkerCount = count
	}
}

// WithQueueSize sets how many notifications may wait for a free worker before new notifications are dropped.
func WithQueueSize(size int) ZMQOption {
	return func(z *ZMQPublisher) {
		z.optsQueueSize = size
	}
}

// WithLogger sets the logger of the ZMQPublisher.
func WithLogger(log *logger.Logger) ZMQOption {
	return func(z *ZMQPublisher) {
		z.log = log
	}
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
