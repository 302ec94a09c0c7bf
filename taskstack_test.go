package flock

import (
	"testing"
	"time"
)

func TestTaskStack_PushPopLIFO(t *testing.T) {
	s := newTaskStack()
	a := packagedTask{future: newFuture()}
	b := packagedTask{future: newFuture()}

	s.push(a)
	s.push(b)

	got, ok := s.pop()
	if !ok || got.future != b.future {
		t.Fatalf("first pop = %v, want b (LIFO)", got)
	}
	got, ok = s.pop()
	if !ok || got.future != a.future {
		t.Fatalf("second pop = %v, want a", got)
	}
	if _, ok := s.pop(); ok {
		t.Fatal("pop() on empty stack returned ok=true")
	}
}

func TestTaskStack_PopOrWaitBlocksUntilPush(t *testing.T) {
	s := newTaskStack()
	task := packagedTask{future: newFuture()}

	result := make(chan bool, 1)
	go func() {
		_, ok := s.popOrWait()
		result <- ok
	}()

	select {
	case <-result:
		t.Fatal("popOrWait() returned before any push")
	case <-time.After(20 * time.Millisecond):
	}

	s.push(task)

	select {
	case ok := <-result:
		if !ok {
			t.Fatal("popOrWait() returned ok=false after a push")
		}
	case <-time.After(time.Second):
		t.Fatal("popOrWait() never returned after push")
	}
}

func TestTaskStack_PopOrWaitUnblocksOnTerminate(t *testing.T) {
	s := newTaskStack()

	result := make(chan bool, 1)
	go func() {
		_, ok := s.popOrWait()
		result <- ok
	}()

	select {
	case <-result:
		t.Fatal("popOrWait() returned before signalTerminate")
	case <-time.After(20 * time.Millisecond):
	}

	s.signalTerminate()

	select {
	case ok := <-result:
		if ok {
			t.Fatal("popOrWait() returned ok=true on an empty, terminating stack")
		}
	case <-time.After(time.Second):
		t.Fatal("popOrWait() never returned after signalTerminate")
	}
	if !s.isTerminating() {
		t.Fatal("isTerminating() = false after signalTerminate")
	}
}

func TestTaskStack_Len(t *testing.T) {
	s := newTaskStack()
	if s.len() != 0 {
		t.Fatalf("len() = %d, want 0", s.len())
	}
	s.push(packagedTask{future: newFuture()})
	s.push(packagedTask{future: newFuture()})
	if s.len() != 2 {
		t.Fatalf("len() = %d, want 2", s.len())
	}
}

func TestTaskStack_PushIfNotTerminatingSucceedsBeforeTerminate(t *testing.T) {
	s := newTaskStack()
	if ok := s.pushIfNotTerminating(packagedTask{future: newFuture()}); !ok {
		t.Fatal("pushIfNotTerminating() = false on a live stack")
	}
	if s.len() != 1 {
		t.Fatalf("len() = %d, want 1", s.len())
	}
}

func TestTaskStack_PushIfNotTerminatingFailsAfterTerminate(t *testing.T) {
	s := newTaskStack()
	s.signalTerminate()

	if ok := s.pushIfNotTerminating(packagedTask{future: newFuture()}); ok {
		t.Fatal("pushIfNotTerminating() = true on a terminating stack")
	}
	if s.len() != 0 {
		t.Fatalf("len() = %d, want 0: task must not land on a terminating stack", s.len())
	}
}
