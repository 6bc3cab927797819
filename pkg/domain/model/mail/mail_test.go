package mail_test

import (
	"testing"

	"github.com/m-mizutani/gatherly/pkg/domain/model/mail"
	"github.com/m-mizutani/gt"
)

func TestMessage_Validate(t *testing.T) {
	valid := mail.Message{To: []string{"a@example.com"}, Subject: "s", HTML: "<p>b</p>"}
	gt.NoError(t, valid.Validate())

	testCases := []struct {
		name string
		msg  mail.Message
	}{
		{"no recipient", mail.Message{Subject: "s", HTML: "b"}},
		{"blank recipient", mail.Message{To: []string{" "}, Subject: "s", HTML: "b"}},
		{"no subject", mail.Message{To: []string{"a@example.com"}, HTML: "b"}},
		{"no body", mail.Message{To: []string{"a@example.com"}, Subject: "s"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gt.Error(t, tc.msg.Validate())
		})
	}
}
