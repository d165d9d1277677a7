package model_test

import (
	"testing"

	"github.com/okian/playerhunt/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestResolvedEntity(t *testing.T) {
	Convey("Given two resolutions of the same athlete from different sources", t, func() {
		a := model.ResolvedEntity{Sport: "Football", Country: "Argentina", MatchedName: "Lionel Messi", Source: model.SourceExact}
		b := a
		b.Source = model.SourceWikidata

		Convey("Then they describe the same identity", func() {
			So(a.Same(b), ShouldBeTrue)
		})

		Convey("And a different country breaks identity", func() {
			b.Country = ""
			So(a.Same(b), ShouldBeFalse)
			So(b.HasCountry(), ShouldBeFalse)
			So(a.HasCountry(), ShouldBeTrue)
		})
	})
}
