/*
Copyright 2011-2026 Frederic Langlet
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
you may obtain a copy of the License at

                http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package bwcore

import (
	"fmt"
	"time"
)

// Event kinds a Listener may receive. Scoped to what this module
// actually drives: the start/end of one stage's forward or inverse
// call. Compression/entropy/whole-file events belong to a layer above
// this core and are not emitted here.
const (
	EvtBeforeTransform = 0
	EvtAfterTransform   = 1
	EvtBlockInfo        = 2
)

// Event is a single structured notification about a transform stage.
type Event struct {
	eventType int
	id        int
	size      int64
	eventTime time.Time
	msg       string
}

// NewEventFromString creates an Event that just wraps a message.
func NewEventFromString(evtType, id int, msg string, evtTime time.Time) *Event {
	if evtTime.IsZero() {
		evtTime = time.Now()
	}

	return &Event{eventType: evtType, id: id, msg: msg, eventTime: evtTime}
}

// NewEvent creates an Event carrying a stage index and a byte size
// (bytes consumed or produced, depending on eventType).
func NewEvent(evtType, id int, size int64, evtTime time.Time) *Event {
	if evtTime.IsZero() {
		evtTime = time.Now()
	}

	return &Event{eventType: evtType, id: id, size: size, eventTime: evtTime}
}

// Type returns the event kind (one of the Evt* constants).
func (e *Event) Type() int {
	return e.eventType
}

// ID returns the stage index this event describes.
func (e *Event) ID() int {
	return e.id
}

// Time returns when the event was recorded.
func (e *Event) Time() time.Time {
	return e.eventTime
}

// Size returns the byte count carried by this event.
func (e *Event) Size() int64 {
	return e.size
}

// String renders the event, preferring a wrapped message if present.
func (e *Event) String() string {
	if len(e.msg) > 0 {
		return e.msg
	}

	t := ""

	switch e.eventType {
	case EvtBeforeTransform:
		t = "BEFORE_TRANSFORM"
	case EvtAfterTransform:
		t = "AFTER_TRANSFORM"
	case EvtBlockInfo:
		t = "BLOCK_INFO"
	}

	return fmt.Sprintf("{ \"type\":\"%s\", \"id\":%d, \"size\":%d, \"time\":%d }",
		t, e.id, e.size, e.eventTime.UnixNano()/1000000)
}

// Listener is implemented by event processors that want structured
// Event values rather than the lighter transform.StageListener closure.
type Listener interface {
	ProcessEvent(evt *Event)
}
