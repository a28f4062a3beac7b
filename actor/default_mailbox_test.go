/*
 * MIT License
 *
 * Copyright (c) 2025 Vincent Maciejewski, M2 Tech
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

package actor

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gerrors "github.com/vincent212/actors/errors"
)

func enqueueProbe(t *testing.T, mailbox Mailbox, seq int) {
	t.Helper()
	require.NoError(t, mailbox.Enqueue(contextFromPool(&probe{Seq: seq}, nil, nil)))
}

func TestDefaultMailbox_FIFO(t *testing.T) {
	mailbox := NewDefaultMailboxWithCapacity(4)

	for seq := 0; seq < 3; seq++ {
		enqueueProbe(t, mailbox, seq)
	}
	require.EqualValues(t, 3, mailbox.Len())

	for seq := 0; seq < 3; seq++ {
		rctx := mailbox.Dequeue()
		require.NotNil(t, rctx)
		assert.Equal(t, seq, rctx.Message().(*probe).Seq)
	}
	assert.True(t, mailbox.IsEmpty())
	mailbox.Dispose()
}

func TestDefaultMailbox_LastStampedOnEmptyingPop(t *testing.T) {
	mailbox := NewDefaultMailboxWithCapacity(4)
	enqueueProbe(t, mailbox, 0)
	enqueueProbe(t, mailbox, 1)

	first := mailbox.Dequeue()
	require.NotNil(t, first)
	assert.False(t, first.Last())

	second := mailbox.Dequeue()
	require.NotNil(t, second)
	assert.True(t, second.Last())
	assert.True(t, mailbox.IsEmpty())
	mailbox.Dispose()
}

func TestDefaultMailbox_OverflowAbsorbsBursts(t *testing.T) {
	capacity := 4
	burst := 50
	mailbox := NewDefaultMailboxWithCapacity(capacity)

	// the producer never blocks, even far beyond ring capacity
	for seq := 0; seq < burst; seq++ {
		enqueueProbe(t, mailbox, seq)
	}
	require.EqualValues(t, burst, mailbox.Len())

	for seq := 0; seq < burst; seq++ {
		rctx := mailbox.Dequeue()
		require.NotNil(t, rctx)
		assert.Equal(t, seq, rctx.Message().(*probe).Seq)
		assert.Equal(t, seq == burst-1, rctx.Last())
	}
	mailbox.Dispose()
}

func TestDefaultMailbox_Peek(t *testing.T) {
	mailbox := NewDefaultMailbox()
	assert.Nil(t, mailbox.Peek())

	enqueueProbe(t, mailbox, 7)
	head := mailbox.Peek()
	require.NotNil(t, head)
	assert.Equal(t, 7, head.Message().(*probe).Seq)
	require.EqualValues(t, 1, mailbox.Len())
	mailbox.Dispose()
}

func TestDefaultMailbox_BlockingDequeue(t *testing.T) {
	mailbox := NewDefaultMailbox()

	got := make(chan *ReceiveContext, 1)
	go func() {
		got <- mailbox.Dequeue()
	}()

	// the consumer is parked; nothing arrives before the enqueue
	select {
	case <-got:
		t.Fatal("Dequeue returned on an empty mailbox")
	case <-time.After(50 * time.Millisecond):
	}

	enqueueProbe(t, mailbox, 1)
	select {
	case rctx := <-got:
		require.NotNil(t, rctx)
		assert.Equal(t, 1, rctx.Message().(*probe).Seq)
	case <-time.After(time.Second):
		t.Fatal("Dequeue did not wake on enqueue")
	}
	mailbox.Dispose()
}

func TestDefaultMailbox_DisposeUnblocksConsumer(t *testing.T) {
	mailbox := NewDefaultMailbox()

	got := make(chan *ReceiveContext, 1)
	go func() {
		got <- mailbox.Dequeue()
	}()

	time.Sleep(50 * time.Millisecond)
	mailbox.Dispose()

	select {
	case rctx := <-got:
		assert.Nil(t, rctx)
	case <-time.After(time.Second):
		t.Fatal("Dequeue did not wake on dispose")
	}

	err := mailbox.Enqueue(contextFromPool(new(probe), nil, nil))
	assert.ErrorIs(t, err, gerrors.ErrMailboxClosed)
}

func TestDefaultMailbox_ManyProducersSingleConsumer(t *testing.T) {
	producers := 4
	perProducer := 200
	mailbox := NewDefaultMailboxWithCapacity(8)

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(producer int) {
			defer wg.Done()
			for seq := 0; seq < perProducer; seq++ {
				assert.NoError(t, mailbox.Enqueue(contextFromPool(&probe{Seq: producer*perProducer + seq}, nil, nil)))
			}
		}(p)
	}

	lastPerProducer := make([]int, producers)
	for i := range lastPerProducer {
		lastPerProducer[i] = -1
	}
	for i := 0; i < producers*perProducer; i++ {
		rctx := mailbox.Dequeue()
		require.NotNil(t, rctx)
		seq := rctx.Message().(*probe).Seq
		producer := seq / perProducer
		// per-producer order is preserved even under contention
		assert.Greater(t, seq%perProducer, lastPerProducer[producer])
		lastPerProducer[producer] = seq % perProducer
	}
	wg.Wait()
	assert.True(t, mailbox.IsEmpty())
	mailbox.Dispose()
}
