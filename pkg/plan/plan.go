// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package plan holds the built-in patch plan for the CompanionAI chat app:
// image attachments on send, a full-screen image viewer, and message rewind
// and regenerate buttons.
package plan

import "github.com/walteh/patchrc/pkg/operation"

// DefaultRoot is where the CompanionAI source tree is expected
const DefaultRoot = "C:/CA"

// Target paths relative to the root
const (
	ChatInputPath        = "app/screens/ChatScreen/ChatInput/index.tsx"
	ChatAttachmentsPath  = "app/screens/ChatScreen/ChatWindow/ChatAttachments.tsx"
	ChatQuickActionsPath = "app/screens/ChatScreen/ChatWindow/ChatQuickActions.tsx"
)

// CompanionAI returns the three built-in steps in run order
func CompanionAI() []operation.Step {
	return []operation.Step{
		ChatInput(),
		ChatAttachments(),
		ChatQuickActions(),
	}
}
