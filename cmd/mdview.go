/*
Copyright © 2024 Ryan Painter paintersrp@gmail.com

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/Paintersrp/mdview/internal/config"
	"github.com/Paintersrp/mdview/internal/state"
	"github.com/Paintersrp/mdview/pkg/cmd/root"
)

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	newState := func(ctx context.Context) (*state.State, error) {
		return state.NewState(ctx, "")
	}
	loadConfig := func() (*config.Config, error) {
		home, err := state.GetHomeDir()
		if err != nil {
			return nil, err
		}
		return state.LoadConfig(home)
	}

	rootCmd := root.NewCmdRoot(newState, loadConfig)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
