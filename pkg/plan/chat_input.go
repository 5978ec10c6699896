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
	pickerImport      = "import { getDocumentAsync } from 'expo-document-picker'"
	sendHelpersImport = "import { sendMessageWithAttachments } from '@lib/state/ChatSendHelpers'"
	chatOptionsImport = "import ChatOptions from './ChatInputOptions'"
	imagePickerImport = "import ImagePickerMenu from './ImagePickerMenu'"
)

const oldHandleSend = `    const handleSend = async () => {
        if (newMessage.trim() !== '' || attachments.length > 0) await addEntry('user', newMessage)
        const messageId = await addEntry('assistant', '')
        setNewMessage('')
        setAttachments([])
        if (messageId) generateResponse(messageId)
    }`

const newHandleSend = `    const handleSend = async () => {
        if (newMessage.trim() !== '' || attachments.length > 0) {
            const attachmentUris = attachments.map((a) => a.uri)
            await sendMessageWithAttachments('user', newMessage, attachmentUris)
        }
        const messageId = await sendMessageWithAttachments('assistant', '', [])
        setNewMessage('')
        setAttachments([])
        if (messageId) generateResponse(messageId)
    }`

const oldPopupMenu = `                            <PopupMenu
                                icon="paperclip"
                                iconSize={20}
                                options={[
                                    {
                                        label: 'Add Image',
                                        icon: 'picture',
                                        onPress: async (menuRef) => {
                                            menuRef.current?.close()
                                            const result = await getDocumentAsync({
                                                type: 'image/*',
                                                multiple: true,
                                                copyToCacheDirectory: true,
                                            })
                                            if (result.canceled || result.assets.length < 1) return

                                            const newAttachments = result.assets
                                                .map((item) => ({
                                                    uri: item.uri,
                                                    type: 'image',
                                                    name: item.name,
                                                }))
                                                .filter(
                                                    (item) =>
                                                        !attachments.some(
                                                            (a) => a.name === item.name
                                                        )
                                                ) as Attachment[]
                                            setAttachments([...attachments, ...newAttachments])
                                        },
                                    },
                                ]}
                                style={{
                                    color: color.text._400,
                                    padding: 8,
                                    backgroundColor: color.neutral._200,
                                    borderRadius: 16,
                                }}
                                placement="top"
                            />`

const newImagePicker = `                            <ImagePickerMenu
                                onImagesSelected={(uris) => {
                                    const newAttachments = uris
                                        .map((uri) => ({
                                            uri: uri,
                                            type: 'image' as const,
                                            name: uri.split('/').pop() || 'image.jpg',
                                        }))
                                        .filter((item) => !attachments.some((a) => a.uri === item.uri))
                                    setAttachments([...attachments, ...newAttachments])
                                }}
                            />`

// ChatInput sends attachments through ChatSendHelpers and swaps the paperclip
// menu for ImagePickerMenu
func ChatInput() operation.Step {
	return operation.Step{
		Name:   "ChatInput",
		Target: ChatInputPath,
		Rules: []text.EditRule{
			{
				Name:        "import-send-helpers",
				Marker:      pickerImport,
				Replacement: pickerImport + "\n" + sendHelpersImport,
				Guard:       "import { sendMessageWithAttachments }",
			},
			{
				Name:        "import-image-picker",
				Marker:      chatOptionsImport,
				Replacement: chatOptionsImport + "\n" + imagePickerImport,
				Guard:       imagePickerImport,
			},
			{
				Name:        "handle-send",
				Marker:      oldHandleSend,
				Replacement: newHandleSend,
				Guard:       "await sendMessageWithAttachments('user', newMessage, attachmentUris)",
			},
			{
				Name:        "image-picker-menu",
				Marker:      oldPopupMenu,
				Replacement: newImagePicker,
				Guard:       "<ImagePickerMenu",
			},
		},
	}
}
