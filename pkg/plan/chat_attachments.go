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
	chatsImport = "import { Chats } from '@lib/state/Chat'"
	entryData   = "    const message = Chats.useEntryData(index)"
)

const viewerImports = `import React, { useState } from 'react'
import { Pressable } from 'react-native'
import ImageViewer from './ImageViewer'`

const viewerState = `
    const [viewerVisible, setViewerVisible] = useState(false)
    const [selectedImage, setSelectedImage] = useState<string>('')`

const oldScaledImage = `                {message.attachments.map((item) => (
                    <ScaledImage
                        cachePolicy="none"
                        key={item.image_uri}
                        uri={item.image_uri}
                        style={{ height: Dimensions.get('window').height / 8, borderRadius: 8 }}
                    />
                ))}`

const newScaledImage = `                {message.attachments.map((item) => (
                    <Pressable key={item.image_uri} onPress={() => { setSelectedImage(item.image_uri); setViewerVisible(true) }}>
                        <ScaledImage
                            cachePolicy="none"
                            uri={item.image_uri}
                            style={{ height: Dimensions.get('window').height / 8, borderRadius: 8 }}
                        />
                    </Pressable>
                ))}`

const closingViews = "            </View>\n        </View>\n    )"

const closingViewsWithViewer = `            </View>

            <ImageViewer
                visible={viewerVisible}
                imageUri={selectedImage}
                onClose={() => setViewerVisible(false)}
            />
        </View>
    )`

// ChatAttachments opens tapped attachments in a full-screen ImageViewer
func ChatAttachments() operation.Step {
	return operation.Step{
		Name:   "ChatAttachments",
		Target: ChatAttachmentsPath,
		Rules: []text.EditRule{
			{
				Name:        "import-viewer",
				Marker:      chatsImport,
				Replacement: chatsImport + "\n" + viewerImports,
				Guard:       "import React, { useState } from 'react'",
			},
			{
				Name:        "viewer-state",
				Marker:      entryData,
				Replacement: entryData + viewerState,
				Guard:       "const [viewerVisible, setViewerVisible]",
			},
			{
				Name:        "pressable-image",
				Marker:      oldScaledImage,
				Replacement: newScaledImage,
				Guard:       "<Pressable key={item.image_uri}",
			},
			{
				Name:        "mount-viewer",
				Marker:      closingViews,
				Replacement: closingViewsWithViewer,
				Guard:       "<ImageViewer",
			},
		},
	}
}
