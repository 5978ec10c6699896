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

package plan

import (
	"github.com/walteh/patchrc/pkg/operation"
	"github.com/walteh/patchrc/pkg/text"
)

const (
	loggerImport         = "import { Logger } from '@lib/state/Logger'"
	messageHelpersImport = "import { deleteMessagesAfterIndex, regenerateMessage } from '@lib/state/ChatMessageHelpers'"
	nativeImport         = "import { BackHandler, View } from 'react-native'"
	nativeImportAlert    = "import { Alert, BackHandler, View } from 'react-native'"
)

const editButton = `                        <Animated.View
                            entering={ZoomIn.duration(200)}
                            exiting={ZoomOut.duration(200)}>
                            <ThemedButton
                                variant="tertiary"
                                iconName="edit"
                                iconSize={24}
                                iconStyle={{
                                    color: color.text._500,
                                }}
                                onPress={handleEnableEdit}
                            />
                        </Animated.View>`

const rewindAndRegenerateButtons = `

                        <Animated.View
                            entering={ZoomIn.duration(200)}
                            exiting={ZoomOut.duration(200)}>
                            <ThemedButton
                                variant="tertiary"
                                iconName="reload1"
                                iconSize={24}
                                iconStyle={{ color: color.text._500 }}
                                onPress={() => {
                                    Alert.alert('回溯到此消息', '将删除此消息之后的所有内容,确定吗?', [
                                        { text: '取消', style: 'cancel' },
                                        {
                                            text: '确定',
                                            style: 'destructive',
                                            onPress: async () => {
                                                setShowOptions(undefined)
                                                await deleteMessagesAfterIndex(index)
                                                Logger.infoToast('已回溯')
                                            },
                                        },
                                    ])
                                }}
                            />
                        </Animated.View>

                        {swipe?.role === 'assistant' && (
                            <Animated.View
                                entering={ZoomIn.duration(200)}
                                exiting={ZoomOut.duration(200)}>
                                <ThemedButton
                                    variant="tertiary"
                                    iconName="reload"
                                    iconSize={24}
                                    iconStyle={{ color: color.text._500 }}
                                    onPress={async () => {
                                        setShowOptions(undefined)
                                        const success = await regenerateMessage(index)
                                        if (success) Logger.infoToast('正在重新生成...')
                                        else Logger.warnToast('只能重新生成AI回复')
                                    }}
                                />
                            </Animated.View>
                        )}`

// ChatQuickActions adds rewind-to-message and regenerate buttons next to edit
func ChatQuickActions() operation.Step {
	return operation.Step{
		Name:   "ChatQuickActions",
		Target: ChatQuickActionsPath,
		Rules: []text.EditRule{
			{
				Name:        "import-message-helpers",
				Marker:      loggerImport,
				Replacement: messageHelpersImport + "\n" + loggerImport,
				Guard:       "import { deleteMessagesAfterIndex",
			},
			{
				Name:        "import-alert",
				Marker:      nativeImport,
				Replacement: nativeImportAlert,
				Guard:       nativeImportAlert,
			},
			{
				Name:        "rewind-regenerate-buttons",
				Marker:      editButton,
				Replacement: editButton + rewindAndRegenerateButtons,
				Guard:       `iconName="reload1"`,
			},
		},
	}
}
