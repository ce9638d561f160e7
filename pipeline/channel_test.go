package pipeline_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezex-io/spark/buffer"
	"github.com/ezex-io/spark/kernel"
	"github.com/ezex-io/spark/pipeline"
)

type recordingInbound struct {
	reads []buffer.PipelineMessage
}

func (r *recordingInbound) OnChannelActive(ctx *pipeline.HandlerContext) { ctx.FireChannelActive() }
func (r *recordingInbound) OnRead(ctx *pipeline.HandlerContext, msg buffer.PipelineMessage) {
	r.reads = append(r.reads, msg)
	ctx.FireRead(msg)
}
func (r *recordingInbound) OnReadComplete(ctx *pipeline.HandlerContext) { ctx.FireReadComplete() }
func (r *recordingInbound) OnWritabilityChanged(ctx *pipeline.HandlerContext, w bool) {
	ctx.FireWritabilityChanged(w)
}
func (r *recordingInbound) OnUserEvent(ctx *pipeline.HandlerContext, e any) { ctx.FireUserEvent(e) }
func (r *recordingInbound) OnExceptionCaught(ctx *pipeline.HandlerContext, err error) {
	ctx.FireExceptionCaught(err)
}
func (r *recordingInbound) OnChannelInactive(ctx *pipeline.HandlerContext) { ctx.FireChannelInactive() }

type fixedOutbound struct {
	signal pipeline.WriteSignal
}

func (f *fixedOutbound) OnWrite(_ *pipeline.HandlerContext, _ buffer.PipelineMessage) pipeline.WriteSignal {
	return f.signal
}
func (f *fixedOutbound) OnFlush(_ *pipeline.HandlerContext) {}
func (f *fixedOutbound) OnCloseGraceful(_ *pipeline.HandlerContext, _ kernel.Deadline) {}

// propagatingOutbound forwards every outbound event to the next
// handler in the chain, recording that it ran first.
type propagatingOutbound struct {
	ran bool
}

func (p *propagatingOutbound) OnWrite(ctx *pipeline.HandlerContext, msg buffer.PipelineMessage) pipeline.WriteSignal {
	p.ran = true

	return ctx.FireWrite(msg)
}
func (p *propagatingOutbound) OnFlush(ctx *pipeline.HandlerContext) {
	p.ran = true
	ctx.FireFlush()
}
func (p *propagatingOutbound) OnCloseGraceful(ctx *pipeline.HandlerContext, deadline kernel.Deadline) {
	p.ran = true
	ctx.FireCloseGraceful(deadline)
}

// blockingInbound stalls on its first OnRead until release is closed,
// letting a test pile up unconsumed messages in the channel's inbox.
type blockingInbound struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (b *blockingInbound) OnChannelActive(*pipeline.HandlerContext) {}
func (b *blockingInbound) OnRead(_ *pipeline.HandlerContext, _ buffer.PipelineMessage) {
	b.once.Do(func() { close(b.started) })
	<-b.release
}
func (b *blockingInbound) OnReadComplete(*pipeline.HandlerContext)                 {}
func (b *blockingInbound) OnWritabilityChanged(*pipeline.HandlerContext, bool)     {}
func (b *blockingInbound) OnUserEvent(*pipeline.HandlerContext, any)               {}
func (b *blockingInbound) OnExceptionCaught(*pipeline.HandlerContext, error)       {}
func (b *blockingInbound) OnChannelInactive(*pipeline.HandlerContext)              {}

func newTestChannel(t *testing.T) *pipeline.Channel {
	t.Helper()

	call := kernel.NewBuilder().Build()

	return pipeline.NewChannel(t.Context(), call, pipeline.WithChannelName("test"))
}

func TestFireReadReachesRegisteredHandler(t *testing.T) {
	ch := newTestChannel(t)
	rec := &recordingInbound{}
	ch.AddInboundLast("recorder", rec)

	msg := buffer.Buf(buffer.NewReadable([]byte("hi")))
	ch.FireRead(msg)

	require.Eventually(t, func() bool { return len(rec.reads) == 1 }, time.Second, 5*time.Millisecond)
}

func TestWriteReturnsAcceptedWithEmptyChain(t *testing.T) {
	ch := newTestChannel(t)

	signal := ch.Write(buffer.Buf(buffer.NewReadable([]byte("x"))))
	assert.Equal(t, pipeline.Accepted, signal)
}

func TestWriteFlowControlAppliedMarksChannelBusy(t *testing.T) {
	ch := newTestChannel(t)
	ch.AddOutboundLast("fixed", &fixedOutbound{signal: pipeline.FlowControlApplied})

	signal := ch.Write(buffer.Buf(buffer.NewReadable([]byte("x"))))
	assert.Equal(t, pipeline.FlowControlApplied, signal)

	_, busy := ch.PollReady().IsBusy()
	assert.True(t, busy)
}

func TestWritabilityRestoredClearsBusyState(t *testing.T) {
	ch := newTestChannel(t)
	ch.AddOutboundLast("fixed", &fixedOutbound{signal: pipeline.FlowControlApplied})
	ch.AddInboundLast("recorder", &recordingInbound{})

	ch.Write(buffer.Buf(buffer.NewReadable([]byte("x"))))
	ch.FireWritabilityChanged(true)

	assert.True(t, ch.PollReady().IsReady())
}

func TestWritePropagatesThroughEntireOutboundChain(t *testing.T) {
	ch := newTestChannel(t)
	first := &propagatingOutbound{}
	last := &fixedOutbound{signal: pipeline.FlowControlApplied}

	ch.AddOutboundLast("first", first)
	ch.AddOutboundLast("last", last)

	signal := ch.Write(buffer.Buf(buffer.NewReadable([]byte("x"))))

	assert.True(t, first.ran)
	assert.Equal(t, pipeline.FlowControlApplied, signal)
}

func TestFlushPropagatesThroughEntireOutboundChain(t *testing.T) {
	ch := newTestChannel(t)
	first := &propagatingOutbound{}
	last := &propagatingOutbound{}

	ch.AddOutboundLast("first", first)
	ch.AddOutboundLast("last", last)

	ch.Flush()

	assert.True(t, first.ran)
	assert.True(t, last.ran)
}

func TestPollReadyReportsQueueFullWhenInboxBacksUp(t *testing.T) {
	call := kernel.NewBuilder().Build()
	blocker := &blockingInbound{started: make(chan struct{}), release: make(chan struct{})}

	ch := pipeline.NewChannel(t.Context(), call, pipeline.WithChannelName("backlog"), pipeline.WithInboxBufferSize(2))
	ch.AddInboundLast("blocker", blocker)
	defer close(blocker.release)

	ch.FireRead(buffer.Buf(buffer.NewReadable([]byte("a"))))
	<-blocker.started // first message now stuck inside OnRead

	ch.FireRead(buffer.Buf(buffer.NewReadable([]byte("b"))))
	ch.FireRead(buffer.Buf(buffer.NewReadable([]byte("c"))))

	require.Eventually(t, func() bool {
		_, busy := ch.PollReady().IsBusy()

		return busy
	}, time.Second, 5*time.Millisecond)

	reason, _ := ch.PollReady().IsBusy()
	assert.Equal(t, "queue_full", reason.Tag())
}

func TestCloseIsIdempotentAndTerminal(t *testing.T) {
	ch := newTestChannel(t)

	ch.Close()
	ch.Close()

	assert.Equal(t, pipeline.StateClosed, ch.State())

	_, busy := ch.PollReady().IsBusy()
	assert.True(t, busy)
}

func TestHotSwapReplaceInboundHandler(t *testing.T) {
	ch := newTestChannel(t)
	original := &recordingInbound{}
	replacement := &recordingInbound{}

	ch.AddInboundLast("h", original)
	ok := ch.ReplaceInboundHandler("h", replacement)
	require.True(t, ok)

	ch.FireRead(buffer.Buf(buffer.NewReadable([]byte("y"))))

	require.Eventually(t, func() bool { return len(replacement.reads) == 1 }, time.Second, 5*time.Millisecond)
	assert.Empty(t, original.reads)
}
