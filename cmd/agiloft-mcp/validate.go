// SPDX-License-Identifier: AGPL-3.0
// Copyright 2025 Kadir Pekel
//
// Licensed under the GNU Affero General Public License v3.0 (AGPL-3.0) (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.gnu.org/licenses/agpl-3.0.en.html
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"strings"

	agiloftmcp "github.com/kadirpekel/agiloft-mcp"
	"github.com/kadirpekel/agiloft-mcp/pkg/agiloft"
)

// VersionCmd shows version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Println(agiloftmcp.GetVersion().String())
	return nil
}

// ValidateCmd validates the configuration and reports the resulting tool
// surface without connecting to the backend.
type ValidateCmd struct{}

func (c *ValidateCmd) Run(cli *CLI) error {
	cfg, err := cli.loadConfig()
	if err != nil {
		return err
	}

	registry, err := agiloft.DefaultRegistry()
	if err != nil {
		return err
	}

	fmt.Println("Configuration is valid.")
	fmt.Printf("  Backend:   %s (kb %q, lang %s)\n", cfg.Agiloft.BaseURL, cfg.Agiloft.KB, cfg.Agiloft.Language)
	fmt.Printf("  Transport: %s", cfg.Server.Transport)
	if cfg.Server.Transport == "http" {
		fmt.Printf(" on %s (metrics: %t)", cfg.Server.Address(), cfg.Server.MetricsEnabled())
	}
	fmt.Println()
	fmt.Printf("  Entities:  %s\n", strings.Join(registry.Keys(), ", "))
	return nil
}
