package browser

import (
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// resourceClasses maps CDP resource types to the plural names accepted in
// Config.ResourceBlocking. Types not listed match by their own lowercase name.
var resourceClasses = map[proto.NetworkResourceType]string{
	proto.NetworkResourceTypeImage:      "images",
	proto.NetworkResourceTypeFont:       "fonts",
	proto.NetworkResourceTypeMedia:      "media",
	proto.NetworkResourceTypeStylesheet: "stylesheets",
}

// blockList is the normalized set of resource classes a session refuses.
type blockList map[string]bool

func newBlockList(classes []string) blockList {
	b := make(blockList, len(classes))
	for _, c := range classes {
		b[strings.ToLower(strings.TrimSpace(c))] = true
	}
	return b
}

func (b blockList) blocks(typ proto.NetworkResourceType) bool {
	if class, ok := resourceClasses[typ]; ok {
		return b[class]
	}
	return b[strings.ToLower(string(typ))]
}

// applyResourceBlocking fails requests whose resource type is in classes.
// The elements that issued them stay in the DOM, so selector counts do not
// change. The returned router must be stopped on close.
func applyResourceBlocking(page *rod.Page, classes []string) *rod.HijackRouter {
	blocked := newBlockList(classes)

	router := page.HijackRequests()
	router.MustAdd("*", func(h *rod.Hijack) {
		if blocked.blocks(h.Request.Type()) {
			h.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
			return
		}
		h.ContinueRequest(&proto.FetchContinueRequest{})
	})
	go router.Run()

	return router
}
