// Package report renders source blocks and assembles the final tagged
// document.
//
// Every handler emits one block per input:
//
//	<source type="<kind>" url|path="<value>">
//	  ...escaped content, <error> and <skipped> markers...
//	</source>
//
// Text content is entity-escaped on the way in; error and skip markers
// are written as markup exactly once and never re-escaped. The assembled
// document wraps all blocks in a single <onefilellm_output> envelope.
package report
