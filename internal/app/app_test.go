package app

import (
	"context"
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/suite"

	"github.com/GlebRadaev/bankapi/internal/config"
	"github.com/GlebRadaev/bankapi/internal/notify"
)

type ApplicationSuite struct {
	suite.Suite
	app *Application
}

func TestApplication(t *testing.T) {
	suite.Run(t, &ApplicationSuite{})
}

func (s *ApplicationSuite) SetupTest() {
	s.app = New()
}

func (s *ApplicationSuite) TestWait() {
	ctx, cancel := context.WithCancel(context.Background())

	s.app.errCh = make(chan error)
	go func() {
		s.app.errCh <- fmt.Errorf("mock error")
	}()

	err := s.app.Wait(ctx, cancel)

	s.Require().Error(err)
	s.Contains(err.Error(), "mock error")
}

func (s *ApplicationSuite) TestBuildNotifier_LogOnly() {
	n := s.app.buildNotifier(&config.Config{})

	multi, ok := n.(notify.Multi)
	s.Require().True(ok)
	s.Len(multi, 1)
	s.Empty(s.app.closers)
}

func (s *ApplicationSuite) TestBuildNotifier_AllSinks() {
	mr := miniredis.RunT(s.T())

	n := s.app.buildNotifier(&config.Config{
		RedisAddress: mr.Addr(),
		NotifyStream: "bank:notifications",
		WebhookURL:   "http://localhost:1/hook",
	})

	multi, ok := n.(notify.Multi)
	s.Require().True(ok)
	s.Len(multi, 3)
	s.Len(s.app.closers, 1)

	s.app.shutdown()
}

func (s *ApplicationSuite) TestShutdown_RunsClosersInReverse() {
	var order []int
	s.app.closers = []func(){
		func() { order = append(order, 1) },
		func() { order = append(order, 2) },
	}
	s.app.dispatcher = notify.NewDispatcher(notify.LogNotifier{}, 1)

	s.app.shutdown()

	s.Equal([]int{2, 1}, order)
}
