package main

import (
	"github.com/dgnsrekt/chromescript/internal/controller"
)

func (a *app) service() (*controller.Service, error) {
	session, err := a.openSession()
	if err != nil {
		return nil, err
	}
	return controller.NewService(session), nil
}
