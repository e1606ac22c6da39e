package events

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestSubjects(t *testing.T) {
	s := Subjects{Prefix: "hospital"}
	id := uuid.MustParse("11111111-1111-4111-8111-111111111111")

	assert.Equal(t, "hospital.document.render", s.DocumentRender())
	assert.Equal(t, "hospital.appointment.created.11111111-1111-4111-8111-111111111111", s.AppointmentCreated(id))
	assert.Equal(t, "hospital.appointment.status.11111111-1111-4111-8111-111111111111", s.AppointmentStatus(id))
	assert.Equal(t, "hospital.appointment.status.*", s.AppointmentStatusAll())
	assert.Equal(t, "hospital.message.received", s.MessageReceived())
}

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	_ = r.Publish(context.Background(), "a", RenderJob{Kind: KindInvoice})
	got := r.Events()
	assert.Len(t, got, 1)
	assert.Equal(t, RenderJob{Kind: KindInvoice}, got[0].Payload)
}
