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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gerrors "github.com/vincent212/actors/errors"
)

func TestBoundedMailbox_FIFO(t *testing.T) {
	mailbox := NewBoundedMailbox(8)

	for seq := 0; seq < 3; seq++ {
		require.NoError(t, mailbox.Enqueue(contextFromPool(&probe{Seq: seq}, nil, nil)))
	}
	for seq := 0; seq < 3; seq++ {
		rctx := mailbox.Dequeue()
		require.NotNil(t, rctx)
		assert.Equal(t, seq, rctx.Message().(*probe).Seq)
		assert.Equal(t, seq == 2, rctx.Last())
	}
	assert.True(t, mailbox.IsEmpty())
	mailbox.Dispose()
}

func TestBoundedMailbox_EnqueueBlocksWhenFull(t *testing.T) {
	mailbox := NewBoundedMailbox(1)
	require.NoError(t, mailbox.Enqueue(contextFromPool(&probe{Seq: 0}, nil, nil)))

	done := make(chan error, 1)
	go func() {
		done <- mailbox.Enqueue(contextFromPool(&probe{Seq: 1}, nil, nil))
	}()

	select {
	case <-done:
		t.Fatal("Enqueue did not block on a full mailbox")
	case <-time.After(50 * time.Millisecond):
	}

	rctx := mailbox.Dequeue()
	require.NotNil(t, rctx)
	assert.Equal(t, 0, rctx.Message().(*probe).Seq)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("blocked producer did not resume")
	}
	mailbox.Dispose()
}

func TestBoundedMailbox_DisposeUnblocks(t *testing.T) {
	mailbox := NewBoundedMailbox(4)

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
	assert.ErrorIs(t, mailbox.Enqueue(contextFromPool(new(probe), nil, nil)), gerrors.ErrMailboxClosed)
}
