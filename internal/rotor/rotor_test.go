package rotor_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/rotorsim/internal/control"
	"github.com/san-kum/rotorsim/internal/dynamo"
	"github.com/san-kum/rotorsim/internal/rotor"
)

func omegas(samples []rotor.Sample) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = s.Omega
	}
	return out
}

var _ = Describe("Integrate", func() {
	It("produces a linear ramp under a constant net moment", func() {
		p := rotor.Params{Inertia: 1, BrakingMoment: 0}

		samples, err := rotor.Integrate(p, 0, 1, 3, control.NewConstant(1, 0))

		Expect(err).NotTo(HaveOccurred())
		Expect(omegas(samples)).To(Equal([]float64{0, 1, 2}))
		Expect(samples[0]).To(Equal(rotor.Sample{Time: 0, Omega: 0}))
		Expect(samples[2].Time).To(Equal(2.0))
	})

	It("scales the update by sample time over inertia", func() {
		p := rotor.Params{Inertia: 2, BrakingMoment: 0.5}

		samples, err := rotor.Integrate(p, 1, 0.5, 2, control.NewConstant(3, 0.5))

		Expect(err).NotTo(HaveOccurred())
		// 1 + (0.5/2)*(3 - 0.5 - 0.5)
		Expect(samples[1].Omega).To(BeNumerically("~", 1.5, 1e-12))
	})

	It("returns only the initial sample for a single step", func() {
		samples, err := rotor.Integrate(rotor.Params{Inertia: 1}, 4, 0.1, 1, control.NewConstant(10, 0))

		Expect(err).NotTo(HaveOccurred())
		Expect(samples).To(HaveLen(1))
		Expect(samples[0].Omega).To(Equal(4.0))
	})

	It("does not clamp a diverging speed", func() {
		samples, err := rotor.Integrate(rotor.Params{Inertia: 1, BrakingMoment: 1}, 0, 1, 101, control.NewConstant(0, 0))

		Expect(err).NotTo(HaveOccurred())
		Expect(samples[100].Omega).To(Equal(-100.0))
	})

	It("passes time and speed to the supplier", func() {
		var seen []float64
		supplier := control.Func(func(t, omega float64) (float64, float64) {
			seen = append(seen, t)
			return omega, 0
		})

		samples, err := rotor.Integrate(rotor.Params{Inertia: 1}, 1, 1, 4, supplier)

		Expect(err).NotTo(HaveOccurred())
		Expect(omegas(samples)).To(Equal([]float64{1, 2, 4, 8}))
		Expect(seen).To(Equal([]float64{0, 1, 2, 3}))
	})

	It("is deterministic", func() {
		p := rotor.Params{Inertia: 1.2, BrakingMoment: 0.2}
		a, errA := rotor.Integrate(p, 3, 0.1, 50, control.NewConstant(5.5, 5))
		b, errB := rotor.Integrate(p, 3, 0.1, 50, control.NewConstant(5.5, 5))

		Expect(errA).NotTo(HaveOccurred())
		Expect(errB).NotTo(HaveOccurred())
		Expect(a).To(Equal(b))
	})

	DescribeTable("rejects invalid arguments",
		func(p rotor.Params, dt float64, steps int, supplier dynamo.Controller) {
			_, err := rotor.Integrate(p, 0, dt, steps, supplier)
			Expect(err).To(MatchError(dynamo.ErrInvalidArgument))
		},
		Entry("zero inertia", rotor.Params{Inertia: 0}, 0.1, 3, control.NewConstant(1, 0)),
		Entry("negative inertia", rotor.Params{Inertia: -1}, 0.1, 3, control.NewConstant(1, 0)),
		Entry("zero sample time", rotor.Params{Inertia: 1}, 0.0, 3, control.NewConstant(1, 0)),
		Entry("zero steps", rotor.Params{Inertia: 1}, 0.1, 0, control.NewConstant(1, 0)),
		Entry("nil supplier", rotor.Params{Inertia: 1}, 0.1, 3, nil),
	)
})

var _ = Describe("IntegrateHorizon", func() {
	It("covers the horizon with StepCount samples", func() {
		cfg, err := dynamo.NewConfig(30, 0.1)
		Expect(err).NotTo(HaveOccurred())

		samples, err := rotor.IntegrateHorizon(rotor.Params{Inertia: 1}, 0, cfg, control.NewConstant(0, 0))

		Expect(err).NotTo(HaveOccurred())
		Expect(samples).To(HaveLen(301))
		Expect(samples[300].Time).To(BeNumerically("~", 30, 1e-9))
	})

	It("rejects an invalid horizon", func() {
		_, err := rotor.IntegrateHorizon(rotor.Params{Inertia: 1}, 0, dynamo.Config{TotalTime: 30}, control.NewConstant(0, 0))

		Expect(err).To(MatchError(dynamo.ErrInvalidArgument))
	})
})
