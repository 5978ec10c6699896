/*
Package config loads patch plans from disk.

	            +-------------+
	            |    Plan     |
	            +------+------+
	                   |
	      +------------+------------+
	      |            |            |
	+-----+----+ +-----+----+ +-----+----+
	|   HCL    | |   YAML   | |   JSON   |
	+----------+ +----------+ +----------+

A plan names a root, an optional backup suffix, and an ordered list of
steps. Each step has a target file and ordered rules with a marker, a
replacement and an optional guard. The parser is chosen by file extension.

HCL plans can pull long blocks from side files:

	step "ChatInput" {
	  target = "app/screens/ChatScreen/ChatInput/index.tsx"

	  rule "handle-send" {
	    marker      = chomp(file("blocks/handle_send.old.tsx"))
	    replacement = chomp(file("blocks/handle_send.new.tsx"))
	    guard       = "sendMessageWithAttachments('user'"
	  }
	}
*/
package config
