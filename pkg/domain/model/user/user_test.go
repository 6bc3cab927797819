package user_test

import (
	"testing"

	"github.com/m-mizutani/gatherly/pkg/domain/model/user"
	"github.com/m-mizutani/gt"
)

func TestUser_HasEmail(t *testing.T) {
	gt.True(t, (&user.User{Email: "a@example.com"}).HasEmail())
	gt.False(t, (&user.User{Email: ""}).HasEmail())
	gt.False(t, (&user.User{Email: "   "}).HasEmail())
}
